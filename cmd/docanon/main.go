// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
	"github.com/docanon/docanon-cli-sdk/sdk/services/anonymize"
	"github.com/docanon/docanon-cli-sdk/sdk/services/transfer"
	"github.com/docanon/docanon-cli-sdk/sdk/utils"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type options struct {
	env         string
	endpoint    string
	batch       bool
	download    string
	mirror      bool
	output      string
	concurrency int
	timeout     string
	accept      string
	saveConfig  bool
	verbose     bool
}

func parseFlags(args []string) (*options, *pflag.FlagSet, error) {
	o := &options{}
	fs := pflag.NewFlagSet("docanon", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: docanon [flags] FILE...\n\n")
		fs.PrintDefaults()
	}
	fs.StringVarP(&o.env, "env", "e", "", "environment (INI section) to use")
	fs.StringVar(&o.endpoint, "endpoint", "", "anonymizer service base URL")
	fs.BoolVar(&o.batch, "batch", false, "send all files in a single request")
	fs.StringVarP(&o.download, "download", "d", "", "download the results into this directory")
	fs.BoolVar(&o.mirror, "mirror", false, "mirror downloaded results to the configured S3 bucket")
	fs.StringVarP(&o.output, "output", "o", utils.FormatShort, "output format: short, json or yaml")
	fs.IntVarP(&o.concurrency, "concurrency", "c", 0, "max concurrent uploads (0 = unbounded)")
	fs.StringVar(&o.timeout, "timeout", "", "per request timeout, e.g. 30s (0 = none)")
	fs.StringVar(&o.accept, "accept", "", "comma separated accepted extensions")
	fs.BoolVar(&o.saveConfig, "save-config", false, "persist the effective configuration into the INI")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "verbose transfer output")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return o, fs, nil
}

// applyFlags overrides INI and env values with the flags given explicitly.
func applyFlags(o *options, fs *pflag.FlagSet) {
	if fs.Changed("endpoint") {
		viper.Set(utils.AnonymizerEndpoint, o.endpoint)
	}
	if fs.Changed("concurrency") {
		viper.Set(utils.MaxConcurrency, strconv.Itoa(o.concurrency))
	}
	if fs.Changed("timeout") {
		viper.Set(utils.RequestTimeout, o.timeout)
	}
	if fs.Changed("accept") {
		viper.Set(utils.AcceptExtensions, o.accept)
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	o, fs, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	if err := utils.RegisterIniCfgWithViper(o.env); err != nil {
		log.Printf("config error: %v", err)
		return 1
	}
	applyFlags(o, fs)
	if o.saveConfig {
		if err := utils.SaveEnvironment(); err != nil {
			log.Printf("failed to save config: %v", err)
		}
	}

	conf, err := utils.LoadConfig()
	if err != nil {
		log.Printf("config error: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := anonymize.NewAnonymizeService(ctx, conf)
	if err != nil {
		log.Printf("init error: %v", err)
		return 1
	}
	if err := svc.SelectPaths(fs.Args()...); err != nil {
		log.Printf("selection error: %v", err)
		return 1
	}

	progressDone := func() {}
	if o.verbose {
		var total int64
		for _, f := range svc.Selection() {
			total += f.Size
		}
		var hook *config.ProgressHook
		hook, progressDone = utils.UploadProgress(total)
		svc.SetProgressHook(hook)
	}

	sub := svc.Subscribe(16)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		for ev := range sub.C {
			renderEvent(ev)
		}
	}()

	var res *anonymize.BatchResult
	if o.batch {
		res, err = svc.SubmitBatch(ctx)
	} else {
		res, err = svc.Submit(ctx)
	}
	progressDone()
	sub.Close()
	<-rendered
	if res == nil {
		log.Printf("submission failed: %v", err)
		return 1
	}
	if err != nil {
		log.Printf("batch failed: %v", err)
	}

	if err := printResult(res, o.output); err != nil {
		log.Printf("output error: %v", err)
		return 1
	}

	switch {
	case o.download != "" && len(res.DownloadURLs) > 0:
		if err := fetchResults(ctx, o, res); err != nil {
			log.Printf("transfer error: %v", err)
			return 1
		}
	case o.download != "":
		log.Printf("no results to download")
	case o.mirror:
		log.Printf("--mirror needs --download, skipping")
	}

	if res.Failed() > 0 {
		return 1
	}
	return 0
}

func renderEvent(ev anonymize.TaskEvent) {
	t := ev.Task
	switch t.Status {
	case anonymize.StatusCompleted:
		fmt.Fprintf(os.Stderr, "%-10s %s → %s\n", t.Status, t.Name, t.ResultLocation)
	case anonymize.StatusError:
		fmt.Fprintf(os.Stderr, "%-10s %s: %s\n", t.Status, t.Name, t.Error)
	default:
		fmt.Fprintf(os.Stderr, "%-10s %s\n", t.Status, t.Name)
	}
}

func printResult(res *anonymize.BatchResult, format string) error {
	if utils.TranslateFormat(format) != utils.FormatShort {
		out, err := utils.FormatOutput(res, format)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	fmt.Printf("%-32s %-12s %-10s %s\n", "ID", "NAME", "STATUS", "RESULT")
	for _, t := range res.Tasks {
		result := t.ResultLocation
		if t.Status == anonymize.StatusError {
			result = t.Error
		}
		fmt.Printf("%-32s %-12s %-10s %s\n", t.ID, t.Name, t.Status, result)
	}
	fmt.Printf("\nbatch %s: %d completed, %d failed\n",
		res.BatchID, len(res.Tasks)-res.Failed(), res.Failed())
	return nil
}

func fetchResults(ctx context.Context, o *options, res *anonymize.BatchResult) error {
	conf, err := utils.LoadConfig()
	if err != nil {
		return err
	}
	ts, err := transfer.NewTransferService(ctx, conf)
	if err != nil {
		return err
	}

	infos, err := ts.Download(ctx, transfer.DownloadRequest{
		Locations:   res.DownloadURLs,
		Destination: o.download,
		Verbose:     o.verbose,
	})
	if err != nil {
		return err
	}
	var local []string
	for _, i := range infos {
		if i.Error != "" {
			log.Printf("skipped %s: %s", i.Location, i.Error)
			continue
		}
		local = append(local, i.Path)
	}

	if !o.mirror || len(local) == 0 {
		return nil
	}
	mres, err := ts.Mirror(ctx, transfer.MirrorRequest{
		BatchID: res.BatchID,
		Files:   local,
		Verbose: o.verbose,
	})
	if err != nil {
		return err
	}
	for _, obj := range mres.Objects {
		log.Printf("mirrored %s", obj.Location)
	}
	for _, s := range mres.Skipped {
		log.Printf("already present %s", s)
	}
	return nil
}
