package binproto

import (
	"fmt"
	"reflect"
	"regexp"
	"runtime/debug"
	"strings"
)

// wordBoundary1 marks the start of a new capitalized word run (e.g. the
// "Struct" in "SomeStruct", or the "Adaptor" in "RS485Adaptor") — any
// character followed by an uppercase letter and one or more lowercase
// letters.
var wordBoundary1 = regexp.MustCompile(`(.)([A-Z][a-z]+)`)

// wordBoundary2 marks a lowercase letter or digit immediately followed
// by an uppercase letter (e.g. "tQ" in "RequestQ", or the boundary a
// first pass leaves behind between an acronym and a word it precedes).
var wordBoundary2 = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// DeriveHandlerName implements §4.5's identifier-derivation rule: the
// descriptor name, split into words at a capitalized-word boundary and
// at a lowercase/digit-to-uppercase boundary, joined with underscores
// and lowercased. It is a pure lexical function over the descriptor
// name alone — it never consults the record's fields or runtime.
func DeriveHandlerName(recordName string) string {
	s := wordBoundary1.ReplaceAllString(recordName, "${1}_${2}")
	s = wordBoundary2.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// RecordHandlerFunc handles one decoded record, optionally returning a
// record value (to be serialized and sent back) or raw bytes (§4.5).
type RecordHandlerFunc func(rv *RecordValue) (any, error)

// RawHandlerFunc handles bytes the dispatcher could not match to any
// known discriminator (§4.4's step 3, §4.5's raw_data fallback).
type RawHandlerFunc func(raw []byte) (any, error)

// HandlerSet is an explicit name → callback registry standing in for
// the source's "object with named members" handler interface (§4.5,
// §6): Go has no dynamic attribute lookup, so callbacks are registered
// by their derived name instead of discovered via reflection on
// exported identifiers, which would require a lossy snake_case→
// PascalCase round-trip. BindStruct below offers that reflective path
// too, for callers who would rather keep handlers as plain methods.
type HandlerSet struct {
	byName  map[string]RecordHandlerFunc
	rawData RawHandlerFunc
}

// NewHandlerSet returns an empty HandlerSet. Binding no raw_data
// handler leaves the default behavior of §4.5: an error is logged and
// no reply is produced.
func NewHandlerSet() *HandlerSet {
	return &HandlerSet{byName: make(map[string]RecordHandlerFunc)}
}

// Bind registers fn under an explicit handler name.
func (h *HandlerSet) Bind(name string, fn RecordHandlerFunc) *HandlerSet {
	h.byName[name] = fn
	return h
}

// BindRecord registers fn under desc's derived handler name.
func (h *HandlerSet) BindRecord(desc *RecordDescriptor, fn RecordHandlerFunc) *HandlerSet {
	return h.Bind(DeriveHandlerName(desc.Name()), fn)
}

// BindRawData registers the raw_data fallback handler.
func (h *HandlerSet) BindRawData(fn RawHandlerFunc) *HandlerSet {
	h.rawData = fn
	return h
}

// BindStruct binds, for each of descriptors, the exported method of obj
// named after the PascalCase form of the descriptor's derived handler
// name (e.g. SsnLookup for ssn_lookup), registering it under that
// derived name — a reflection-based convenience in the style of
// reflectutil.go's reflect.Value iteration, for callers
// who would rather define handlers as ordinary methods than populate a
// HandlerSet by hand. Methods must have the signature
// func(*RecordValue) (any, error).
func (h *HandlerSet) BindStruct(obj any, descriptors []*RecordDescriptor) *HandlerSet {
	v := reflect.ValueOf(obj)
	t := v.Type()
	for _, desc := range descriptors {
		name := DeriveHandlerName(desc.Name())
		methodName := pascalCase(name)
		m := v.MethodByName(methodName)
		if !m.IsValid() {
			continue
		}
		if _, ok := t.MethodByName(methodName); !ok {
			continue
		}
		fn := m.Interface()
		handler, ok := fn.(func(*RecordValue) (any, error))
		if !ok {
			continue
		}
		h.Bind(name, handler)
	}
	return h
}

// pascalCase converts DeriveHandlerName's lowercase+underscore form to
// PascalCase, used only by BindStruct's reflective method lookup. It is
// not an exact inverse: acronym case is lost (ssn_lookup → SsnLookup).
func pascalCase(snake string) string {
	parts := strings.Split(snake, "_")
	var out strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		out.WriteString(strings.ToUpper(p[:1]))
		out.WriteString(p[1:])
	}
	return out.String()
}

// Dispatch routes one DispatchResult to the bound handler (§4.5) and
// recovers a panicking handler into a Stack event, matching §7's "a
// handler exception is caught, its trace emitted to the log sink".
func (h *HandlerSet) Dispatch(result *DispatchResult, rt *Runtime) (reply any, err error) {
	rt = rt.orDefault()
	defer func() {
		if r := recover(); r != nil {
			rt.Events.Stack(fmt.Sprintf("handler panicked: %v", r), debug.Stack())
			reply, err = nil, newFramingError("", "", "handler panicked: %v", r)
		}
	}()

	if result.Record != nil {
		name := DeriveHandlerName(result.Record.Descriptor().Name())
		fn, ok := h.byName[name]
		if !ok {
			rt.Events.Error(fmt.Sprintf("%s handler not defined", name), nil)
			return nil, nil
		}
		return fn(result.Record)
	}

	if h.rawData == nil {
		rt.Events.Error("raw_data handler not defined", nil)
		return nil, nil
	}
	return h.rawData(result.Raw)
}
