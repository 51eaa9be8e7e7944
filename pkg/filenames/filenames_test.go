package filenames

import "testing"

func TestWithSuffix(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		suffix string
		want   string
	}{
		{name: "pdf", in: "report.pdf", suffix: "-normalized", want: "report-normalized.pdf"},
		{name: "no_ext", in: "report", suffix: "-normalized", want: "report-normalized"},
		{name: "path", in: "/tmp/report.docx", suffix: "-1", want: "/tmp/report-1.docx"},
		{name: "double_ext", in: "report.tar.gz", suffix: "-x", want: "report.tar-x.gz"},
		{name: "empty", in: "", suffix: "-x", want: "-x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithSuffix(tt.in, tt.suffix); got != tt.want {
				t.Errorf("WithSuffix(%q, %q) = %q, want %q", tt.in, tt.suffix, got, tt.want)
			}
		})
	}
}

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ext  string
		want string
	}{
		{name: "pdf_to_json", in: "report.pdf", ext: ".json", want: "report.json"},
		{name: "no_ext", in: "report", ext: ".json", want: "report.json"},
		{name: "path", in: "/srv/doc.odt", ext: ".txt", want: "/srv/doc.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplaceExt(tt.in, tt.ext); got != tt.want {
				t.Errorf("ReplaceExt(%q, %q) = %q, want %q", tt.in, tt.ext, got, tt.want)
			}
		})
	}
}

func TestSidecar(t *testing.T) {
	if got := Sidecar("report.pdf"); got != "report.metadata.json" {
		t.Errorf("Sidecar() = %q, want %q", got, "report.metadata.json")
	}
	if got := Sidecar("/data/in/scan.docx"); got != "/data/in/scan.metadata.json" {
		t.Errorf("Sidecar() = %q, want %q", got, "/data/in/scan.metadata.json")
	}
}
