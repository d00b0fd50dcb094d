// Package dataio generates synthetic clickstream datasets for examples,
// tests and benchmarks.
package dataio

import (
	"math/rand"
	"strconv"
	"time"

	es "github.com/retentioneering/retentioneering-go/pkg/eventstream"
)

// GeneratorOptions controls the synthetic shop clickstream.
type GeneratorOptions struct {
	Users     int
	MaxEvents int // max events per user path; default 20
	Seed      int64
	Start     time.Time // zero means 2023-01-01 UTC
}

// Transition probabilities of a toy online shop. Each step picks the
// next page from the current one; "payment_done" and "" (leave) are
// terminal.
var shopGraph = map[string][]struct {
	next string
	p    float64
}{
	"main": {
		{"catalog", 0.6},
		{"cart", 0.1},
		{"", 0.3},
	},
	"catalog": {
		{"product1", 0.35},
		{"product2", 0.35},
		{"main", 0.1},
		{"", 0.2},
	},
	"product1": {
		{"cart", 0.4},
		{"catalog", 0.4},
		{"", 0.2},
	},
	"product2": {
		{"cart", 0.4},
		{"catalog", 0.4},
		{"", 0.2},
	},
	"cart": {
		{"delivery_choice", 0.6},
		{"catalog", 0.2},
		{"", 0.2},
	},
	"delivery_choice": {
		{"payment_choice", 0.7},
		{"", 0.3},
	},
	"payment_choice": {
		{"payment_done", 0.8},
		{"", 0.2},
	},
}

// SimpleShop returns a raw frame of user_id/event/timestamp rows
// simulating shop visits. The same options always produce the same
// frame.
func SimpleShop(opts GeneratorOptions) *es.Frame {
	if opts.Users <= 0 {
		opts.Users = 100
	}
	if opts.MaxEvents <= 0 {
		opts.MaxEvents = 20
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	f := es.NewFrame(es.FrameSchema{Columns: []es.ColumnSchema{
		{Name: "user_id", Type: es.KindString},
		{Name: "event", Type: es.KindString},
		{Name: "timestamp", Type: es.KindTime},
	}})
	for u := 0; u < opts.Users; u++ {
		user := "user_" + strconv.Itoa(u)
		ts := start.Add(time.Duration(rng.Intn(86400)) * time.Second)
		page := "main"
		for step := 0; step < opts.MaxEvents && page != ""; step++ {
			f.AppendNullRow()
			row := f.Rows() - 1
			_ = f.SetCell(row, "user_id", user)
			_ = f.SetCell(row, "event", page)
			_ = f.SetCell(row, "timestamp", ts)
			ts = ts.Add(time.Duration(5+rng.Intn(120)) * time.Second)
			if page == "payment_done" {
				break
			}
			page = nextPage(rng, page)
		}
	}
	return f
}

func nextPage(rng *rand.Rand, page string) string {
	edges, ok := shopGraph[page]
	if !ok {
		return ""
	}
	x := rng.Float64()
	acc := 0.0
	for _, e := range edges {
		acc += e.p
		if x < acc {
			return e.next
		}
	}
	return ""
}
