// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import "log/slog"

// Options of loading or creating a Workbook.
type Options struct {
	// Logger receives debug records of loading and saving,
	// and warnings about malformed optional parts. Nil discards them.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}
