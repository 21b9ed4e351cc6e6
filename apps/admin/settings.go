package main

import (
	"context"

	"gopkg.in/yaml.v3"

	"github.com/masdens1250/appamine/core/settings"
)

func (cli *commandLine) showSettings() error {
	s, err := cli.settingsSvc.Get(context.Background())
	if err != nil {
		return err
	}
	return cli.printYAML(s)
}

func (cli *commandLine) setSettings(us settings.UpdateSettings) error {
	if err := us.Validate(cli.validate); err != nil {
		return cli.translate(err)
	}
	s, err := cli.settingsSvc.Update(context.Background(), us)
	if err != nil {
		return err
	}
	return cli.printYAML(s)
}

func (cli *commandLine) printYAML(s settings.Settings) error {
	enc := yaml.NewEncoder(cli.out)
	defer enc.Close()
	return enc.Encode(s)
}
