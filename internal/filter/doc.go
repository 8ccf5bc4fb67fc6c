// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filter narrows and orders entity lists for display.
//
// Each entity type declares a Schema: which fields are searchable text,
// which are categories, which are numeric, which timestamp the date
// window applies to, and which named sort keys exist. A Pipeline applies
// a Query against that schema. Every predicate is independent and the
// active ones are AND-combined; exactly one comparator orders the result.
//
// Usage:
//
//	p := filter.NewPipeline(filter.Contents, nil)
//	out, err := p.Apply(items, filter.Query{
//	    Equals: map[string]string{"type": "image"},
//	    Window: filter.Window7Days,
//	    Sort:   "recent",
//	})
package filter
