package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"pmadmin/internal/api"
	"pmadmin/internal/config"
	"pmadmin/internal/session"
	"pmadmin/internal/store"
	"pmadmin/internal/ui"
)

var version = "dev"

func main() {
	var (
		showVersion = flag.BoolP("version", "v", false, "print version and exit")
		envFile     = flag.String("env", "", "path to an env file")
		apiURL      = flag.String("api-url", "", "backend base URL, e.g. https://host/api/v1")
		storePath   = flag.String("store", "", "path to the local storage database")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("pmadmin " + version)
		return
	}

	if err := run(*envFile, *apiURL, *storePath); err != nil {
		fmt.Fprintln(os.Stderr, "pmadmin:", err)
		os.Exit(1)
	}
}

func run(envFile, apiURL, storePath string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := session.New(st)
	if err != nil {
		return err
	}

	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, sess)

	app := ui.NewApp(client, sess, cfg)
	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}
