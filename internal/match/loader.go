package match

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
	"github.com/roach88/xpand/internal/render"
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading a match directory.
type LoadResult struct {
	Store    *Store
	Files    []string
	Warnings []Warning
}

// Loader reads match files from a filesystem.
type Loader struct {
	fs     afero.Fs
	schema *Schema
	log    zerolog.Logger
}

// NewLoader creates a loader over fsys.
func NewLoader(fsys afero.Fs) (*Loader, error) {
	schema, err := NewSchema()
	if err != nil {
		return nil, err
	}
	return &Loader{fs: fsys, schema: schema, log: logging.Component("match")}, nil
}

type rawVar struct {
	Name       string        `yaml:"name"`
	Type       string        `yaml:"type"`
	Params     render.Params `yaml:"params"`
	DependsOn  []string      `yaml:"depends_on"`
	InjectVars *bool         `yaml:"inject_vars"`
}

type rawMatch struct {
	Trigger  string   `yaml:"trigger"`
	Triggers []string `yaml:"triggers"`
	Regex    string   `yaml:"regex"`

	Replace   *string `yaml:"replace"`
	Markdown  *string `yaml:"markdown"`
	HTML      *string `yaml:"html"`
	ImagePath string  `yaml:"image_path"`

	Vars []rawVar `yaml:"vars"`

	Word           bool   `yaml:"word"`
	LeftWord       bool   `yaml:"left_word"`
	RightWord      bool   `yaml:"right_word"`
	PropagateCase  bool   `yaml:"propagate_case"`
	UppercaseStyle string `yaml:"uppercase_style"`
	ForceMode      string `yaml:"force_mode"`

	Label       string   `yaml:"label"`
	SearchTerms []string `yaml:"search_terms"`
}

type rawFile struct {
	GlobalVars []rawVar   `yaml:"global_vars"`
	Matches    []rawMatch `yaml:"matches"`
}

// Load reads every .yml and .yaml file under dir, in lexical order. Files
// whose name starts with an underscore are skipped.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors and builds a store from
// the valid matches.
func (l *Loader) Load(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := l.fs.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("match directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: "error accessing match directory", Err: err}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := l.findFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: "error scanning directory", Err: err}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no match files found in %s", dir)}}
	}

	var (
		errs    []error
		matches []Match
		globals []render.Variable
	)
	for _, path := range files {
		fm, fg, ferrs := l.loadFile(path)
		if len(ferrs) > 0 {
			errs = append(errs, ferrs...)
			if mode == LoadModeFailFast {
				return nil, errs
			}
		}
		matches = append(matches, fm...)
		globals = append(globals, fg...)
	}

	store := NewStore(matches, globals)
	result := &LoadResult{
		Store:    store,
		Files:    files,
		Warnings: Analyze(store),
	}
	l.log.Debug().
		Int("files", len(files)).
		Int("matches", store.Len()).
		Int("global_vars", len(globals)).
		Int("warnings", len(result.Warnings)).
		Msg("Loaded matches")
	return result, errs
}

func (l *Loader) findFiles(dir string) ([]string, error) {
	var files []string
	err := afero.Walk(l.fs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isMatchFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func isMatchFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
		return false
	}
	ext := filepath.Ext(base)
	return ext == ".yml" || ext == ".yaml"
}

func (l *Loader) loadFile(path string) ([]Match, []render.Variable, []error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, nil, []error{&LoadError{Code: ErrCodeScanError, File: path, Message: "reading file", Err: err}}
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, []error{&LoadError{Code: ErrCodeParseFailed, File: path, Message: "parsing YAML", Err: err}}
	}
	if msgs := l.schema.Validate(doc); len(msgs) > 0 {
		errs := make([]error, 0, len(msgs))
		for _, msg := range msgs {
			errs = append(errs, &LoadError{Code: ErrCodeSchemaFailed, File: path, Message: msg})
		}
		return nil, nil, errs
	}

	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, []error{&LoadError{Code: ErrCodeParseFailed, File: path, Message: "decoding matches", Err: err}}
	}

	var errs []error
	matches := make([]Match, 0, len(raw.Matches))
	for i, rm := range raw.Matches {
		m, err := convertMatch(rm)
		if err != nil {
			errs = append(errs, &LoadError{
				Code:    ErrCodeInvalidMatch,
				File:    path,
				Message: fmt.Sprintf("matches[%d]: %v", i, err),
			})
			continue
		}
		m.Source = path
		matches = append(matches, m)
	}

	globals := make([]render.Variable, 0, len(raw.GlobalVars))
	for _, rv := range raw.GlobalVars {
		globals = append(globals, convertVar(rv))
	}
	return matches, globals, errs
}

func convertVar(rv rawVar) render.Variable {
	inject := true
	if rv.InjectVars != nil {
		inject = *rv.InjectVars
	}
	return render.Variable{
		Name:       rv.Name,
		Type:       rv.Type,
		Params:     rv.Params,
		DependsOn:  rv.DependsOn,
		InjectVars: inject,
	}
}

func convertMatch(rm rawMatch) (Match, error) {
	var triggers []string
	if rm.Trigger != "" {
		triggers = append(triggers, rm.Trigger)
	}
	triggers = append(triggers, rm.Triggers...)

	switch {
	case len(triggers) == 0 && rm.Regex == "":
		return Match{}, errors.New("a trigger or a regex is required")
	case len(triggers) > 0 && rm.Regex != "":
		return Match{}, errors.New("trigger and regex are mutually exclusive")
	}

	bodies := 0
	for _, set := range []bool{rm.Replace != nil, rm.Markdown != nil, rm.HTML != nil, rm.ImagePath != ""} {
		if set {
			bodies++
		}
	}
	if bodies != 1 {
		return Match{}, errors.New("exactly one of replace, markdown, html or image_path is required")
	}

	m := Match{
		Triggers:       triggers,
		Regex:          rm.Regex,
		ImagePath:      rm.ImagePath,
		LeftWord:       rm.Word || rm.LeftWord,
		RightWord:      rm.Word || rm.RightWord,
		PropagateCase:  rm.PropagateCase,
		UppercaseStyle: rm.UppercaseStyle,
		ForceMode:      event.ForceMode(rm.ForceMode),
		Label:          rm.Label,
		SearchTerms:    rm.SearchTerms,
	}
	if rm.Replace != nil {
		m.Replace = *rm.Replace
	}
	if rm.Markdown != nil {
		m.Markdown = *rm.Markdown
	}
	if rm.HTML != nil {
		m.HTML = *rm.HTML
	}
	for _, rv := range rm.Vars {
		m.Vars = append(m.Vars, convertVar(rv))
	}
	return m, nil
}
