// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/docanon/docanon-cli-sdk/sdk/config"
)

/* ------------ tiny UI helpers for single-line progress ------------ */

type globalProgress struct {
	mu         sync.Mutex
	out        io.Writer
	verb       string
	totalKnown bool
	totalBytes int64
	doneBytes  int64
	spinIdx    int
	lastTick   time.Time
}

var spinner = []rune{'|', '/', '-', '\\'}

func newGlobalProgress(verb string, totalBytes int64) *globalProgress {
	return &globalProgress{
		out:        os.Stderr,
		verb:       verb,
		totalKnown: totalBytes > 0,
		totalBytes: totalBytes,
	}
}

func (gp *globalProgress) add(delta int64) {
	gp.mu.Lock()
	gp.doneBytes += delta
	gp.mu.Unlock()
}

func human(n int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)
	switch {
	case n >= GB:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(GB))
	case n >= MB:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(MB))
	case n >= KB:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(KB))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func (gp *globalProgress) render(force bool) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	// throttling: ~10 updates per second
	if !force && time.Since(gp.lastTick) < 100*time.Millisecond {
		return
	}
	gp.lastTick = time.Now()

	if gp.totalKnown && gp.totalBytes > 0 {
		if gp.doneBytes > gp.totalBytes {
			gp.doneBytes = gp.totalBytes
		}
		pct := float64(gp.doneBytes) / float64(gp.totalBytes) * 100
		fmt.Fprintf(gp.out, "\rProgress: %6.2f%% (%s / %s)   ",
			pct, human(gp.doneBytes), human(gp.totalBytes))
	} else {
		ch := spinner[gp.spinIdx%len(spinner)]
		gp.spinIdx++
		fmt.Fprintf(gp.out, "\rProgress: [%c] %s %s   ", ch, human(gp.doneBytes), gp.verb)
	}
}

func (gp *globalProgress) done() {
	gp.render(true)
	fmt.Fprintln(gp.out)
}

// hook feeds the bar from per-file callbacks. Several files may report at
// once, so written deltas are tracked per key.
func (gp *globalProgress) hook() *config.ProgressHook {
	var mu sync.Mutex
	prev := map[string]int64{}
	delta := func(key string, written int64) int64 {
		mu.Lock()
		defer mu.Unlock()
		d := written - prev[key]
		if d > 0 {
			prev[key] = written
		}
		return d
	}
	return &config.ProgressHook{
		OnProgress: func(k string, written, total int64) {
			if d := delta(k, written); d > 0 {
				gp.add(d)
				gp.render(false)
			}
		},
		OnDone: func(k string, total int64, took time.Duration) {
			if d := delta(k, total); d > 0 {
				gp.add(d)
			}
			gp.render(true)
		},
	}
}

// UploadProgress returns a hook rendering one global progress line for a set of
// concurrent uploads of totalBytes, and a func that terminates the line.
func UploadProgress(totalBytes int64) (*config.ProgressHook, func()) {
	gp := newGlobalProgress("uploaded", totalBytes)
	return gp.hook(), gp.done
}

// fileHook prints size, percentage and elapsed time of a single transfer on
// its own lines.
func fileHook(verb string) *config.ProgressHook {
	return &config.ProgressHook{
		OnStart: func(_ string, total int64) {
			if total > 0 {
				fmt.Fprintf(os.Stderr, "   size: %s\n", human(total))
			}
		},
		OnProgress: func(_ string, written, total int64) {
			if total > 0 {
				fmt.Fprintf(os.Stderr, "\r   %s: %6.2f%%", verb, float64(written)/float64(total)*100)
			}
		},
		OnDone: func(_ string, total int64, took time.Duration) {
			took = took.Truncate(100 * time.Millisecond)
			if total > 0 {
				fmt.Fprintf(os.Stderr, "\r   done: 100.00%% in %s\n", took)
				return
			}
			fmt.Fprintf(os.Stderr, "   done in %s\n", took)
		},
	}
}

// lineHook feeds a fresh single-line bar for one transfer and terminates the
// line when it is done. A total reported at start replaces the initial one.
func lineHook(verb string, total int64) *config.ProgressHook {
	gp := newGlobalProgress(verb, total)
	hook := gp.hook()
	hook.OnStart = func(_ string, n int64) {
		if n > 0 {
			gp.mu.Lock()
			gp.totalKnown, gp.totalBytes = true, n
			gp.mu.Unlock()
		}
	}
	onDone := hook.OnDone
	hook.OnDone = func(k string, n int64, took time.Duration) {
		onDone(k, n, took)
		fmt.Fprintln(gp.out)
	}
	return hook
}
