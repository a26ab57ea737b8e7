package main

import (
	"fmt"

	echoapi "github.com/shoyeabaslam/kcet-cams-sub000/apps/api/echo"
)

func (cli *commandLine) token(officer, name, email string, admin bool) error {
	claims := echoapi.NewOfficerClaims(cli.conf, officer, name, email, admin)
	token, err := echoapi.GenerateToken(claims, cli.conf.SecretKey)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, token)
	return nil
}
