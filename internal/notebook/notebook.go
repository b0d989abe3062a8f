// Package notebook renders starter Jupyter notebooks (nbformat 4) for
// course modules and writes them next to each other in one directory, one
// file per module id.
package notebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

// Ext is the file extension of a written notebook.
const Ext = ".ipynb"

// DefaultCourse names the course in the notebook footer.
const DefaultCourse = "Python for Earth Sciences"

// Cell kinds.
const (
	CellMarkdown = "markdown"
	CellCode     = "code"
)

// ErrBadID is returned for module ids that cannot be used as a file name.
var ErrBadID = errors.New("notebook: module id is not a file name")

// Cell is one notebook cell.
type Cell struct {
	Type   string
	Source []string
}

// MarshalJSON writes the cell in nbformat 4 shape. Code cells carry an empty
// output list and a null execution count; markdown cells carry neither.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Type == CellCode {
		return json.Marshal(struct {
			CellType       string         `json:"cell_type"`
			ExecutionCount *int           `json:"execution_count"`
			Metadata       map[string]any `json:"metadata"`
			Outputs        []any          `json:"outputs"`
			Source         []string       `json:"source"`
		}{CellCode, nil, map[string]any{}, []any{}, nonNil(c.Source)})
	}
	return json.Marshal(struct {
		CellType string         `json:"cell_type"`
		Metadata map[string]any `json:"metadata"`
		Source   []string       `json:"source"`
	}{c.Type, map[string]any{}, nonNil(c.Source)})
}

// Notebook is an nbformat 4 document.
type Notebook struct {
	Cells         []Cell   `json:"cells"`
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
}

// Metadata is the kernel description every notebook carries.
type Metadata struct {
	KernelSpec   KernelSpec   `json:"kernelspec"`
	LanguageInfo LanguageInfo `json:"language_info"`
}

// KernelSpec names the Jupyter kernel.
type KernelSpec struct {
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
	Name        string `json:"name"`
}

// LanguageInfo describes the notebook language for front ends.
type LanguageInfo struct {
	CodeMirrorMode    CodeMirrorMode `json:"codemirror_mode"`
	FileExtension     string         `json:"file_extension"`
	MimeType          string         `json:"mimetype"`
	Name              string         `json:"name"`
	NBConvertExporter string         `json:"nbconvert_exporter"`
	PygmentsLexer     string         `json:"pygments_lexer"`
	Version           string         `json:"version"`
}

// CodeMirrorMode selects editor highlighting.
type CodeMirrorMode struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

func python3() Metadata {
	return Metadata{
		KernelSpec: KernelSpec{DisplayName: "Python 3", Language: "python", Name: "python3"},
		LanguageInfo: LanguageInfo{
			CodeMirrorMode:    CodeMirrorMode{Name: "ipython", Version: 3},
			FileExtension:     ".py",
			MimeType:          "text/x-python",
			Name:              "python",
			NBConvertExporter: "python",
			PygmentsLexer:     "ipython3",
			Version:           "3.8.0",
		},
	}
}

// Render builds the starter notebook for m: a header with objectives and
// prerequisites, a code cell importing the usual libraries, and a summary.
func Render(m catalog.Module, course string) Notebook {
	if course == "" {
		course = DefaultCourse
	}
	title := m.Title
	if title == "" {
		title = m.ID
	}
	prereqs := "None"
	if len(m.Prerequisites) > 0 {
		prereqs = strings.Join(m.Prerequisites, ", ")
	}
	level := string(m.Level)
	lower := strings.ToLower(title)

	header := []string{
		"# " + title + "\n",
		"\n",
		"## Learning Objectives\n",
		"- Learn about " + lower + "\n",
		"- Apply concepts to earth science problems\n",
		"\n",
		"## Prerequisites\n",
		prereqs + "\n",
		"\n",
		fmt.Sprintf("**Duration:** %d minutes  \n", m.Duration),
		"**Level:** " + capitalize(level) + "\n",
		"\n",
		"---",
	}
	code := []string{
		"# Welcome to " + title + "!\n",
		fmt.Sprintf("print(%q)\n", "Starting "+title+" module..."),
		"\n",
		"# Import common libraries\n",
		"import numpy as np\n",
		"import pandas as pd\n",
		"import matplotlib.pyplot as plt",
	}
	summary := []string{
		"## Summary\n",
		"\n",
		"This notebook covers **" + title + "**.\n",
		"\n",
		fmt.Sprintf("**Duration:** %d minutes  \n", m.Duration),
		"**Level:** " + level + "  \n",
		"**Prerequisites:** " + prereqs + "\n",
		"\n",
		"## Learning Objectives\n",
		"\n",
		"- Understand " + lower + " concepts\n",
		"- Apply techniques to earth science problems\n",
	}
	if kw := m.Keywords; len(kw) > 0 {
		summary = append(summary, "- Work with "+strings.Join(kw[:min(3, len(kw))], ", ")+"\n")
	}
	summary = append(summary,
		"\n",
		"---\n",
		"\n",
		"*This notebook is part of the "+course+" course.*",
	)

	return Notebook{
		Cells: []Cell{
			{Type: CellMarkdown, Source: header},
			{Type: CellCode, Source: code},
			{Type: CellMarkdown, Source: summary},
		},
		Metadata:      python3(),
		NBFormat:      4,
		NBFormatMinor: 4,
	}
}

// Encode returns nb as indented JSON with a trailing newline.
func Encode(nb Notebook) ([]byte, error) {
	data, err := json.MarshalIndent(nb, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("notebook: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// Path returns where the notebook for id lives under dir.
func Path(dir, id string) string {
	return filepath.Join(dir, id+Ext)
}

// Options controls WriteAll.
type Options struct {
	// Course names the course in each notebook footer.
	Course string
	// Force overwrites notebooks that already exist.
	Force bool
}

// Result reports what WriteAll did, by module id.
type Result struct {
	Created []string
	Skipped []string
}

// WriteAll writes one notebook per module into dir, creating dir if needed.
// Existing notebooks are skipped unless opts.Force is set, so hand-edited
// notebooks survive a rerun. Ids that are not plain file names fail with
// ErrBadID before anything is written.
func WriteAll(dir string, mods []catalog.Module, opts Options) (Result, error) {
	var res Result
	for _, m := range mods {
		if !validID(m.ID) {
			return res, fmt.Errorf("%w: %q", ErrBadID, m.ID)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, fmt.Errorf("notebook: create %s: %w", dir, err)
	}
	for _, m := range mods {
		data, err := Encode(Render(m, opts.Course))
		if err != nil {
			return res, err
		}
		created, err := write(Path(dir, m.ID), data, opts.Force)
		if err != nil {
			return res, err
		}
		if created {
			res.Created = append(res.Created, m.ID)
		} else {
			res.Skipped = append(res.Skipped, m.ID)
		}
	}
	return res, nil
}

// write creates path with data. Without force an existing file is left
// alone and reported as not created.
func write(path string, data []byte, force bool) (bool, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("notebook: open %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, fmt.Errorf("notebook: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("notebook: close %s: %w", path, err)
	}
	return true, nil
}

func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
