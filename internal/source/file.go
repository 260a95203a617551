package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// fileDocument is the YAML layout of a period file:
//
//	semesters:
//	  - name: Sommersemester 2024
//	    lecture: {start: 2024-03-18, end: 2024-07-12}
//	    hip: {start: 2024-05-13, end: 2024-05-17}
type fileDocument struct {
	Semesters []struct {
		Name    string         `yaml:"name"`
		Lecture *models.Period `yaml:"lecture"`
		HIP     *models.Period `yaml:"hip"`
	} `yaml:"semesters"`
}

// File reads periods from a YAML document on disk.
type File struct {
	Path string
}

// NewFile returns a YAML file source.
func NewFile(path string) *File {
	return &File{Path: path}
}

// FetchPeriods reads and validates the file on every call.
func (f *File) FetchPeriods(ctx context.Context) (Periods, error) {
	if err := ctx.Err(); err != nil {
		return Periods{}, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return Periods{}, fmt.Errorf("read period file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a period document.
func ParseYAML(data []byte) (Periods, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Periods{}, fmt.Errorf("parse period file: %w", err)
	}
	periods := NewPeriods()
	for _, s := range doc.Semesters {
		if s.Lecture != nil {
			if err := put(periods.Lectures, s.Name, utcPeriod(*s.Lecture)); err != nil {
				return Periods{}, fmt.Errorf("lecture period: %w", err)
			}
		}
		if s.HIP != nil {
			if err := put(periods.HIPs, s.Name, utcPeriod(*s.HIP)); err != nil {
				return Periods{}, fmt.Errorf("project week: %w", err)
			}
		}
	}
	return periods, nil
}

// MarshalYAML renders periods in the file layout, in semester order.
func MarshalYAML(p Periods) ([]byte, error) {
	names := make(map[string]struct{}, len(p.Lectures)+len(p.HIPs))
	for name := range p.Lectures {
		names[name] = struct{}{}
	}
	for name := range p.HIPs {
		names[name] = struct{}{}
	}
	ordered := sortedKeys(names)

	var doc fileDocument
	for _, name := range ordered {
		entry := struct {
			Name    string         `yaml:"name"`
			Lecture *models.Period `yaml:"lecture"`
			HIP     *models.Period `yaml:"hip"`
		}{Name: name}
		if l, ok := p.Lectures[name]; ok {
			entry.Lecture = &l
		}
		if h, ok := p.HIPs[name]; ok {
			entry.HIP = &h
		}
		doc.Semesters = append(doc.Semesters, entry)
	}
	return yaml.Marshal(doc)
}
