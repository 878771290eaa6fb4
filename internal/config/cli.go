// Package config declares the command line and configuration file surface.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/canfestival-tools/objdictgen/internal/cmd"
)

type CLI struct {
	Config  string           `help:"Configuration file (json, yaml or toml)" env:"OBJDICTGEN_CONFIG"`
	Version kong.VersionFlag `help:"Print version and exit"`
	Log     Log              `embed:"" prefix:"log."`

	Generate  cmd.Generate      `cmd:"" help:"Generate CanFestival C sources from an object dictionary"`
	Diff      cmd.Diff          `cmd:"" help:"Show differences between generated and existing sources"`
	Check     cmd.Check         `cmd:"" help:"Generate in memory and report errors only"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
}

type Log struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"OBJDICTGEN_LOG_LEVEL"`
	File    string `help:"Log file path (default: console)" env:"OBJDICTGEN_LOG_FILE"`
	Format  string `help:"Log format; auto is text on a terminal, json otherwise" enum:"auto,text,json" default:"auto" env:"OBJDICTGEN_LOG_FORMAT"`
	RawFile string `help:"Dump every rendered file to this path" env:"OBJDICTGEN_LOG_RAW_FILE"`
}
