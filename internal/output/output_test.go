package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestPrinter_JSON_Success(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, true, false)

	err := printer.Success(map[string]any{
		"path":   "meme.png",
		"width":  800,
		"height": 600,
	})
	if err != nil {
		t.Fatalf("Success() error = %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
	}
	if result["path"] != "meme.png" {
		t.Errorf("path = %v, want %q", result["path"], "meme.png")
	}
	if result["width"] != float64(800) {
		t.Errorf("width = %v, want 800", result["width"])
	}
}

func TestPrinter_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantCode int
	}{
		{name: "user error", err: NewUserError("invalid color \"red\""), wantMsg: "invalid color \"red\"", wantCode: ExitUserError},
		{name: "system error", err: NewSystemErrorWithCause("writing meme.png", errors.New("disk full")), wantMsg: "writing meme.png", wantCode: ExitSystemError},
		{name: "plain error", err: errors.New("boom"), wantMsg: "boom", wantCode: ExitUserError},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/json", func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf, true, false).Error(tt.err)

			var result struct {
				Error string `json:"error"`
				Code  int    `json:"code"`
			}
			if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
				t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
			}
			if result.Error != tt.wantMsg || result.Code != tt.wantCode {
				t.Errorf("got %+v, want %q/%d", result, tt.wantMsg, tt.wantCode)
			}
		})
		t.Run(tt.name+"/human", func(t *testing.T) {
			var out, errOut bytes.Buffer
			NewPrinter(&out, false, false).WithStderr(&errOut).Error(tt.err)

			if out.Len() != 0 {
				t.Errorf("human error went to stdout: %q", out.String())
			}
			if got := errOut.String(); !strings.Contains(got, "Error") || !strings.Contains(got, tt.wantMsg) {
				t.Errorf("stderr = %q", got)
			}
		})
	}
}

func TestPrinter_Human_Success(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	if err := printer.Success(map[string]any{"message": "Wrote meme.png"}); err != nil {
		t.Fatalf("Success() error = %v", err)
	}
	if got := buf.String(); got != "Wrote meme.png\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPrinter_Human_SuccessSortedKeys(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	if err := printer.Success(map[string]any{"width": 10, "height": 5, "path": "x.png"}); err != nil {
		t.Fatal(err)
	}
	want := "height: 5\npath: x.png\nwidth: 10\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrinter_Print(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Print("%dx%d", 800, 600)
	printer.Println(" canvas")

	if buf.String() != "800x600 canvas\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrinter_IsJSON(t *testing.T) {
	var buf bytes.Buffer
	if !NewPrinter(&buf, true, false).IsJSON() {
		t.Error("IsJSON() should return true for JSON printer")
	}
	if NewPrinter(&buf, false, false).IsJSON() {
		t.Error("IsJSON() should return false for human printer")
	}
}

func TestPrinter_Warn(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false, false).Warn("template %q hidden", "Cat")
	if got := buf.String(); !strings.Contains(got, "Warning") || !strings.Contains(got, `"Cat"`) {
		t.Errorf("output = %q", got)
	}

	buf.Reset()
	NewPrinter(&buf, true, false).Warn("template hidden")
	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
	}
	if result["warning"] != "template hidden" {
		t.Errorf("warning = %v", result["warning"])
	}
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Table([]string{"#", "NAME", "SIZE"}, [][]string{
		{"1", "Group picture", "1024x768"},
		{"2", "Screenshot", "1920x1080"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	col := strings.Index(lines[0], "SIZE")
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line[col:], "1") {
			t.Errorf("SIZE column misaligned in %q", line)
		}
	}
}

func TestPrinter_BoxPlain(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false, false).Box("meme shell", "type help")
	if buf.String() != "meme shell\n\ntype help\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrinter_SectionAndKeyValue(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Section("Top")
	printer.KeyValue("fill", "#FFFFFF")

	want := "\nTop\n───\nfill: #FFFFFF\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestErrorJSON_Format(t *testing.T) {
	var parsed struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	if err := json.Unmarshal(ErrorJSON("no such template: 3", ExitUserError), &parsed); err != nil {
		t.Fatalf("Failed to parse ErrorJSON output: %v", err)
	}
	if parsed.Error != "no such template: 3" || parsed.Code != ExitUserError {
		t.Errorf("parsed = %+v", parsed)
	}
}
