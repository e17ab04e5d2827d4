// Package idreg generates stable identifiers for imported building
// elements and records enough state to reproduce them across runs.
//
// An identifier has the form "prefix-slug" where the slug is derived
// from the element's source name. Distinct source objects with the same
// name inside one (prefix, context) bucket are told apart by their
// ordinal position and receive an incrementing "-N" suffix; unnamed
// elements draw zero-padded counters. The same source document
// therefore always yields the same identifiers in the same order.
//
// A Registry is not safe for concurrent mutation; each translation run
// owns its own instance.
package idreg

import (
	"fmt"
	"regexp"
	"strings"
)

// Prefix vocabulary. One token per entity kind.
const (
	PrefixZone         = "zone"
	PrefixZoneGroup    = "zgrp"
	PrefixSurface      = "surf"
	PrefixOpening      = "open"
	PrefixMaterial     = "mat"
	PrefixConstruction = "cons"
	PrefixWindowType   = "win-type"
	PrefixDUType       = "du-type"
	PrefixHVAC         = "hvac"
	PrefixDHW          = "dhw"
	PrefixIAQFan       = "iaq"
	PrefixPVArray      = "pv"
)

// SnapshotVersion guards the serialized registry format.
const SnapshotVersion = 1

// Entry is one (input → identifier) mapping in a Snapshot. Entries are
// ordered by generation time. Ordinal distinguishes same-named source
// objects in one bucket; it is 0 for the first occurrence.
type Entry struct {
	Prefix     string `json:"prefix"`
	SourceName string `json:"source_name"`
	Context    string `json:"context"`
	Ordinal    int    `json:"ordinal,omitempty"`
	ID         string `json:"id"`
}

// Snapshot is the serializable registry state. It is embedded inside
// EMJSON metadata so a later export resolves references back to the
// identifiers of the original import.
type Snapshot struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

type bucketKey struct {
	prefix, name, context string
	ordinal               int
}

type triple struct {
	prefix, name, context string
}

// Registry maps (prefix, source name, context) triples to identifiers.
type Registry struct {
	forward  map[bucketKey]string
	used     map[string]bool
	counters map[string]int // unnamed-element counter per prefix+context
	cursor   map[triple]int // Allocate calls made by this process
	byID     map[string]Entry
	order    []Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		forward:  make(map[bucketKey]string),
		used:     make(map[string]bool),
		counters: make(map[string]int),
		cursor:   make(map[triple]int),
		byID:     make(map[string]Entry),
	}
}

// Restore rebuilds a registry from a snapshot taken by an earlier run.
func Restore(s Snapshot) (*Registry, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported registry snapshot version %d", s.Version)
	}
	r := New()
	for _, e := range s.Entries {
		r.register(e)
	}
	return r, nil
}

func (r *Registry) register(e Entry) {
	r.forward[bucketKey{e.Prefix, e.SourceName, e.Context, e.Ordinal}] = e.ID
	r.used[e.ID] = true
	r.byID[e.ID] = e
	r.order = append(r.order, e)

	if slugify(e.SourceName) == "" {
		ck := e.Prefix + "\x00" + e.Context
		r.counters[ck]++
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugLen = 30

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	return s
}

func (r *Registry) generateAt(prefix, sourceName, context string, ordinal int) string {
	key := bucketKey{prefix, sourceName, context, ordinal}
	if id, ok := r.forward[key]; ok {
		return id
	}

	var base string
	if slug := slugify(sourceName); slug != "" {
		base = prefix + "-" + slug
	} else {
		ck := prefix + "\x00" + context
		base = fmt.Sprintf("%s-%03d", prefix, r.counters[ck]+1)
	}

	id := base
	for n := 2; r.used[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}

	r.register(Entry{Prefix: prefix, SourceName: sourceName, Context: context, Ordinal: ordinal, ID: id})
	return id
}

// Generate returns the identifier for (prefix, sourceName, context),
// creating and recording one on first use. Calling again with the same
// triple returns the same identifier. It never fails: empty names are
// valid and draw a per-bucket counter.
func (r *Registry) Generate(prefix, sourceName, context string) string {
	return r.generateAt(prefix, sourceName, context, 0)
}

// Allocate is Generate for enumeration sites that visit each source
// object exactly once: a second distinct object carrying an
// already-seen name in the same bucket gets the next ordinal and a
// deterministic "-N" suffix instead of the first object's identifier.
// After a Restore, replaying the original call sequence returns the
// restored identifiers rather than allocating past them.
func (r *Registry) Allocate(prefix, sourceName, context string) string {
	tr := triple{prefix, sourceName, context}
	ord := r.cursor[tr]
	r.cursor[tr]++
	return r.generateAt(prefix, sourceName, context, ord)
}

// Lookup reports the identifier previously generated for the triple's
// first occurrence, without creating one.
func (r *Registry) Lookup(prefix, sourceName, context string) (string, bool) {
	id, ok := r.forward[bucketKey{prefix, sourceName, context, 0}]
	return id, ok
}

// SourceName resolves an identifier back to the name it was generated
// from. Exporters use this to re-emit name-based references.
func (r *Registry) SourceName(id string) (string, bool) {
	e, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return e.SourceName, true
}

// Len reports how many identifiers have been generated.
func (r *Registry) Len() int { return len(r.order) }

// Snapshot exports the full registry state in generation order.
func (r *Registry) Snapshot() Snapshot {
	entries := make([]Entry, len(r.order))
	copy(entries, r.order)
	return Snapshot{Version: SnapshotVersion, Entries: entries}
}
