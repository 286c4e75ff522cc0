package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/artemijrodionov/sim8086/disasm"
)

func hex4(offset int) string {
	return fmt.Sprintf("%04x", offset)
}

func hexBytes(b []byte) string {
	return fmt.Sprintf("% x", b)
}

type yamlInst struct {
	Offset string `yaml:"offset"`
	Bytes  string `yaml:"bytes"`
	Text   string `yaml:"text"`
}

type yamlSummary struct {
	Bytes         int `yaml:"bytes"`
	Instructions  int `yaml:"instructions"`
	Skipped       int `yaml:"skipped"`
	TrailingBytes int `yaml:"trailing_bytes"`
}

type yamlReport struct {
	Source       string      `yaml:"source,omitempty"`
	Summary      yamlSummary `yaml:"summary"`
	Instructions []yamlInst  `yaml:"instructions"`
}

// yamlWriter keeps every line until Finish, the summary goes first in the
// document.
type yamlWriter struct {
	w      io.Writer
	report yamlReport
}

func newYAML(w io.Writer, source string) *yamlWriter {
	return &yamlWriter{
		w:      w,
		report: yamlReport{Source: source, Instructions: []yamlInst{}},
	}
}

func (y *yamlWriter) Emit(line disasm.Line) error {
	b := line.Bytes()
	y.report.Instructions = append(y.report.Instructions, yamlInst{
		Offset: hex4(line.Offset),
		Bytes:  hexBytes(b[:]),
		Text:   line.Text,
	})
	return nil
}

func (y *yamlWriter) Finish(summary disasm.Summary) error {
	y.report.Summary = yamlSummary(summary)

	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(2)
	if err := enc.Encode(y.report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
