// Command schemagen turns a YAML schema declaration into the description a
// store bootstraps from, in either the textual dialect or flat-column YAML.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/rowkit/rowkit"
)

var (
	inFlag      = flag.String("in", "", "Path to the schema declaration YAML")
	formatFlag  = flag.String("format", "text", "Output format: text or yaml")
	envFlag     = flag.String("env", "", "Optional .env file to load before running")
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := rowkit.GetVersionInfo()
		fmt.Printf("rowkit schemagen version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if *envFlag != "" {
		if err := godotenv.Load(*envFlag); err != nil {
			fmt.Fprintf(os.Stderr, "schemagen: loading %s: %v\n", *envFlag, err)
			os.Exit(1)
		}
	}

	if *inFlag == "" {
		fmt.Fprintln(os.Stderr, "schemagen: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*inFlag, *formatFlag); err != nil {
		fmt.Fprintf(os.Stderr, "schemagen: %v\n", err)
		os.Exit(1)
	}
}

func run(path, format string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	reg, err := rowkit.LoadSchema(data)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		fmt.Println(rowkit.ExportText(reg))
	case "yaml":
		out, err := rowkit.ExportYAML(reg)
		if err != nil {
			return err
		}
		os.Stdout.Write(out)
	default:
		return fmt.Errorf("unknown format %q (want text or yaml)", format)
	}
	return nil
}
