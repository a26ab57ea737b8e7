package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
)

// catalogFile is the YAML layout read by `seed`. Fees are in paise.
type catalogFile struct {
	DocumentTypes []struct {
		Code     string `yaml:"code"`
		Name     string `yaml:"name"`
		Required bool   `yaml:"required"`
	} `yaml:"document_types"`
	FeeStructures []struct {
		CourseCode   string `yaml:"course_code"`
		AcademicYear string `yaml:"academic_year"`
		TotalFee     int64  `yaml:"total_fee"`
	} `yaml:"fee_structures"`
}

// seed loads a catalog file. Relative paths are resolved against the project root.
func (cli *commandLine) seed(path string) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cli.conf.WorkDir, path)
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading catalog")
	}
	var cat catalogFile
	if err = yaml.UnmarshalStrict(data, &cat); err != nil {
		return errors.Wrap(err, "parsing catalog")
	}

	ctx := context.Background()
	for _, dt := range cat.DocumentTypes {
		saved, err := cli.svc.SaveDocumentType(ctx, admission.DocumentType{Code: dt.Code, Name: dt.Name, IsRequired: dt.Required})
		if err != nil {
			return errors.Wrapf(err, "saving document type %q", dt.Code)
		}
		_, _ = fmt.Fprintf(cli.out, "document type #%d %s (required: %t)\n", saved.ID, saved.Code, saved.IsRequired)
	}
	for _, fs := range cat.FeeStructures {
		saved, err := cli.svc.SaveFeeStructure(ctx, admission.FeeStructure{
			CourseOffering: admission.CourseOffering{CourseCode: fs.CourseCode, AcademicYear: fs.AcademicYear},
			TotalFee:       fs.TotalFee,
		})
		if err != nil {
			return errors.Wrapf(err, "saving fee structure %s %s", fs.CourseCode, fs.AcademicYear)
		}
		_, _ = fmt.Fprintf(cli.out, "fee structure %s %s: %s\n", saved.CourseCode, saved.AcademicYear, admission.FormatAmount(saved.TotalFee))
	}
	return nil
}
