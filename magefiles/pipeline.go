// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

func wikigraph(args ...string) error {
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Templates lists the wiki's infobox templates and which ones are in use.
func Templates() error {
	mg.Deps(Build)
	return wikigraph("templates", "--probe")
}

// Harvest scrapes every infobox template into data/. Set PAGES to change
// the pages per template (default from the config file).
func Harvest() error {
	mg.Deps(Init, Build)
	args := []string{"harvest", "--labels", "--split"}
	if pages := os.Getenv("PAGES"); pages != "" {
		args = append(args, "--limit", pages)
	}
	return wikigraph(args...)
}

// Characters harvests the Characters category into data/.
func Characters() error {
	mg.Deps(Init, Build)
	return wikigraph("characters", "--labels")
}

// Align adds DBpedia and YAGO owl:sameAs links for the Characters
// category. Set PAGES to cap the members aligned.
func Align() error {
	mg.Deps(Init, Build)
	args := []string{"align", "--category", "Characters"}
	if pages := os.Getenv("PAGES"); pages != "" {
		args = append(args, "--limit", pages)
	}
	return wikigraph(args...)
}

// Cards links the METW cards in data/cards.json (or CARDS) to the persons
// of the harvested character graphs.
func Cards() error {
	mg.Deps(Init, Build)
	file := os.Getenv("CARDS")
	if file == "" {
		file = "data/cards.json"
	}
	return wikigraph("cards", file, "--graph", "data/tolkien_characters_*.ttl")
}

// Load uploads every Turtle file in data/ into Fuseki.
func Load() error {
	mg.Deps(Build)
	return wikigraph("load", "data/*.ttl")
}

// Ingest indexes every Turtle file in data/ into the local store.
func Ingest() error {
	mg.Deps(Init, Build)
	return wikigraph("store", "ingest", "data/*.ttl", "--source", "mage")
}

// Serve starts the linked-data server against Fuseki.
func Serve() error {
	mg.Deps(Build)
	return wikigraph("serve")
}

// FusekiUp starts a local Fuseki container.
func FusekiUp() error {
	mg.Deps(Build)
	return wikigraph("fuseki", "up", "--data-dir", "store/fuseki")
}
