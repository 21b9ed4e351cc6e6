package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core/report"
)

// textFormats may be written to a terminal.
var textFormats = map[string]bool{"html": true}

func (cli *commandLine) export(in, format, out string, prefill bool) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return errors.Wrap(err, "reading report")
	}
	var r report.Report
	if err = json.Unmarshal(data, &r); err != nil {
		return errors.Wrapf(err, "decoding %s", in)
	}
	r.Normalize()

	if prefill && (r.School == "" || r.Counselor == "") {
		s, err := cli.settingsSvc.Get(context.Background())
		if err != nil {
			return err
		}
		if r.School == "" {
			r.School = s.SchoolName
		}
		if r.Counselor == "" {
			r.Counselor = s.CounselorName
		}
	}

	if out == "" && !textFormats[format] && isTerminalFunc(cli.out) {
		return errors.Errorf("refusing to write %s to a terminal, use -out", format)
	}

	doc, err := cli.reportSvc.Render(r, format)
	if err != nil {
		return err
	}

	if out == "" {
		_, err = cli.out.Write(doc.Body)
		return err
	}
	if err = os.WriteFile(out, doc.Body, 0o644); err != nil {
		return errors.Wrap(err, "writing document")
	}
	return nil
}
