package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitual/internal/errors"
)

// HabitRecord is one habit in an interchange file. ID is only written by
// extended exports and links the history sections to their habit.
type HabitRecord struct {
	ID             int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Name           string `json:"name" yaml:"name"`
	Category       string `json:"category" yaml:"category"`
	DailyFrequency int    `json:"daily_frequency" yaml:"daily_frequency"`
	CreatedAt      string `json:"created_at" yaml:"created_at"`
}

type ProgressRecord struct {
	HabitID  int64  `json:"habit_id" yaml:"habit_id"`
	Date     string `json:"date" yaml:"date"`
	Progress int    `json:"progress" yaml:"progress"`
	Target   int    `json:"target" yaml:"target"`
}

type MonthlyRecord struct {
	HabitID   int64  `json:"habit_id" yaml:"habit_id"`
	Date      string `json:"date" yaml:"date"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Document is the file layout written by exports. The minimal form only
// carries Habits.
type Document struct {
	Version    string           `json:"version,omitempty" yaml:"version,omitempty"`
	ExportDate string           `json:"export_date,omitempty" yaml:"export_date,omitempty"`
	Theme      string           `json:"theme,omitempty" yaml:"theme,omitempty"`
	Habits     []HabitRecord    `json:"habits" yaml:"habits"`
	Progress   []ProgressRecord `json:"habit_progress,omitempty" yaml:"habit_progress,omitempty"`
	Monthly    []MonthlyRecord  `json:"habits_progress_monthly,omitempty" yaml:"habits_progress_monthly,omitempty"`
}

// rawDocument keeps records undecoded so each can fail on its own.
type rawDocument struct {
	Habits   []json.RawMessage `json:"habits"`
	Progress []json.RawMessage `json:"habit_progress"`
	Monthly  []json.RawMessage `json:"habits_progress_monthly"`
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func encode(doc Document, yamlOut bool) ([]byte, error) {
	if yamlOut {
		return yaml.Marshal(doc)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// decode normalizes a JSON, JSONC or YAML file into raw records. A
// top-level array is read as the habit list.
func decode(data []byte, yamlIn bool) (rawDocument, error) {
	if yamlIn {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return rawDocument{}, fmt.Errorf("%w: %v", errors.ErrFormat, err)
		}
		converted, err := json.Marshal(v)
		if err != nil {
			return rawDocument{}, fmt.Errorf("%w: %v", errors.ErrFormat, err)
		}
		data = converted
	} else {
		data = jsonc.ToJSON(data)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return rawDocument{}, fmt.Errorf("%w: empty document", errors.ErrFormat)
	}

	var doc rawDocument
	if data[0] == '[' {
		if err := json.Unmarshal(data, &doc.Habits); err != nil {
			return rawDocument{}, fmt.Errorf("%w: %v", errors.ErrFormat, err)
		}
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return rawDocument{}, fmt.Errorf("%w: %v", errors.ErrFormat, err)
	}
	if doc.Habits == nil {
		return rawDocument{}, fmt.Errorf("%w: no habits list", errors.ErrFormat)
	}
	return doc, nil
}
