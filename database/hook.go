/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

// TraceEnv toggles the coloured SQL trace: "1" logs failed queries, "2" logs
// every query.
const TraceEnv = "PLANSHARE_SQL_TRACE"

var querySilent atomic.Bool

// EnableQuerySilent mutes both trace hooks, used while migrations run.
func EnableQuerySilent(b bool) {
	querySilent.Store(b)
}

var (
	opSelect = color.New(color.FgGreen)
	opInsert = color.New(color.FgBlue)
	opUpdate = color.New(color.FgYellow)
	opDelete = color.New(color.FgMagenta)
	opOther  = color.New(color.FgRed)
	tagTrace = color.New(color.FgCyan)
	tagSlow  = color.New(color.FgYellow, color.Bold)
	errBadge = color.New(color.BgRed, color.FgHiWhite)
)

// QueryHook prints queries in colour, one line each.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

var _ bun.QueryHook = (*QueryHook)(nil)

// NewQueryHook returns a hook controlled by TraceEnv and writing to w.
func NewQueryHook(w io.Writer) *QueryHook {
	if w == nil {
		w = os.Stderr
	}
	return &QueryHook{envName: TraceEnv, writer: w}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if querySilent.Load() {
		return
	}
	enabled := h.enabled
	verbose := h.verbose
	if env, ok := os.LookupEnv(h.envName); ok {
		env = strings.TrimSpace(env)
		enabled = env != "" && env != "0"
		verbose = env == "2"
	}
	if !enabled {
		return
	}

	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		tagTrace.Sprintf("%10s", "[SQL]"),
		fmt.Sprintf("%12s", now.Sub(event.StartTime).Round(time.Microsecond)),
		" ", operationColor(event).Sprint(event.Query),
	}
	if event.Err != nil {
		typ := reflect.TypeOf(event.Err).String()
		args = append(args, "\t", errBadge.Sprintf(" %s: %s ", typ, event.Err.Error()))
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

func operationColor(event *bun.QueryEvent) *color.Color {
	switch event.Operation() {
	case "SELECT":
		return opSelect
	case "INSERT":
		return opInsert
	case "UPDATE":
		return opUpdate
	case "DELETE":
		return opDelete
	default:
		return opOther
	}
}

// SlowQueryHook warns about successful queries slower than threshold.
type SlowQueryHook struct {
	threshold time.Duration
	logger    Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func NewSlowQueryHook(threshold time.Duration, logger Logger) *SlowQueryHook {
	return &SlowQueryHook{threshold: threshold, logger: loggerOrDefault(logger)}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if querySilent.Load() || event.Err != nil || h.threshold <= 0 {
		return
	}
	if d := time.Since(event.StartTime); d > h.threshold {
		h.logger.Warn(tagSlow.Sprint("Slow query detected"),
			"duration", d.Round(time.Microsecond),
			"threshold", h.threshold,
			"query", event.Query,
		)
	}
}
