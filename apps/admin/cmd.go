package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/masdens1250/appamine/core"
	"github.com/masdens1250/appamine/core/report"
	"github.com/masdens1250/appamine/core/settings"
)

var (
	isTerminalFunc = isTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf        *core.Config
	settingsSvc *settings.Service
	reportSvc   *report.Service
	validate    *validator.Validate
	translator  ut.Translator
	out         io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  settings show - print the stored settings")
	fmt.Fprintln(cli.out, "  settings set [-school NAME] [-counselor NAME] - update the stored settings, an empty NAME clears it")
	fmt.Fprintln(cli.out, "  export -in REPORT.json [-format html|xlsx] [-out FILE] [-prefill=true] - render a saved report")
	fmt.Fprintln(cli.out, "  migrate - create the settings tables in the configured database")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "settings":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		switch args[2] {
		case "show":
			return cli.showSettings()
		case "set":
			setCmd := cli.newFlagSet("settings set")
			school := setCmd.String("school", "", "The school name printed on the reports.")
			counselor := setCmd.String("counselor", "", "The counselor name printed on the reports.")
			if err := cli.parse(setCmd, args[3:]); err != nil {
				return err
			}
			var us settings.UpdateSettings
			setCmd.Visit(func(f *flag.Flag) {
				switch f.Name {
				case "school":
					us.SchoolName = school
				case "counselor":
					us.CounselorName = counselor
				}
			})
			if us.SchoolName == nil && us.CounselorName == nil {
				setCmd.Usage()
				return errHelp
			}
			return cli.setSettings(us)
		default:
			cli.printUsage()
			return errHelp
		}

	case "export":
		exportCmd := cli.newFlagSet("export")
		in := exportCmd.String("in", "", "The report JSON file, as answered by GET /v1/reports/:id.")
		format := exportCmd.String("format", "html", "The document format.")
		out := exportCmd.String("out", "", "The output file. Defaults to stdout.")
		prefill := exportCmd.Bool("prefill", true, "Fill an empty school or counselor in from the settings.")
		if err := cli.parse(exportCmd, args[2:]); err != nil {
			return err
		}
		if *in == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(*in, *format, *out, *prefill)

	case "migrate":
		return cli.migrate()

	default:
		cli.printUsage()
		return errHelp
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// translate flattens validation errors into one line per field.
func (cli *commandLine) translate(err error) error {
	verrs, ok := errors.Cause(err).(validator.ValidationErrors)
	if !ok {
		return err
	}
	msg := "invalid input:"
	for _, verr := range verrs {
		msg += fmt.Sprintf("\n  %s: %s", verr.Field(), verr.Translate(cli.translator))
	}
	return errors.New(msg)
}
