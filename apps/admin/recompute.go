package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) recompute(studentID string, all bool, by string) error {
	ctx := context.Background()
	if all {
		changed, err := cli.svc.RecomputeAll(ctx, by)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cli.out, "%d student(s) changed status\n", changed)
		return nil
	}

	res, err := cli.svc.Recompute(ctx, studentID, by)
	if err != nil {
		return err
	}
	if res.Transition != nil {
		_, _ = fmt.Fprintf(cli.out, "%s: %s -> %s\n", res.Student.ApplicationNumber, res.Transition.OldStatus, res.Transition.NewStatus)
	} else {
		_, _ = fmt.Fprintf(cli.out, "%s: unchanged (%s)\n", res.Student.ApplicationNumber, res.Student.Status)
	}
	return nil
}
