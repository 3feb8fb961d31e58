package langsync

import (
	"errors"
	"strings"
	"testing"
)

func TestNewSyncerValidatesConfiguration(t *testing.T) {
	three, nine := 3, 9
	tests := []struct {
		name  string
		opts  SyncerOptions
		field string
	}{
		{"missing root branch", SyncerOptions{Branches: StaticBranch("x")}, "root_branch"},
		{"missing provider", SyncerOptions{RootBranch: "master"}, "branch"},
		{"missing source folder", SyncerOptions{FileSets: []FileSet{{BaseName: "a"}}}, "files[0].source_folder"},
		{"missing base name", SyncerOptions{FileSets: []FileSet{{SourceFolder: "src"}}}, "files[0].base_name"},
		{"nested base name", SyncerOptions{FileSets: []FileSet{{SourceFolder: "src", BaseName: "a/b"}}}, "files[0].base_name"},
		{"dot dot remote", SyncerOptions{FileSets: []FileSet{{SourceFolder: "src", BaseName: "a", RemotePath: "x/../y"}}}, "files[0].remote_path"},
		{"bad update option", SyncerOptions{FileSets: []FileSet{{SourceFolder: "src", BaseName: "a", Options: FileOptions{UpdateOption: "force"}}}}, "files[0].update_option"},
		{"bad escape quotes", SyncerOptions{FileSets: []FileSet{{SourceFolder: "src", BaseName: "a", Options: FileOptions{EscapeQuotes: &nine}}}}, "files[0].escape_quotes"},
		{"bad escape special", SyncerOptions{FileSets: []FileSet{{SourceFolder: "src", BaseName: "a", Options: FileOptions{EscapeSpecialCharacters: &three}}}}, "files[0].escape_special_characters"},
		{"duplicate remote", SyncerOptions{FileSets: []FileSet{
			{SourceFolder: "src", BaseName: "a", RemotePath: "x"},
			{SourceFolder: "other", BaseName: "a", RemotePath: "/x/"},
		}}, "files[1].base_name"},
		{"escaping status", SyncerOptions{StatusArtifacts: []StatusArtifact{{File: "../status.json"}}}, "status[0].file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if opts.RootBranch == "" && tt.field != "root_branch" {
				opts.RootBranch = "master"
			}
			if opts.Branches == nil && tt.field != "branch" {
				opts.Branches = StaticBranch("master")
			}
			_, err := NewSyncer(newFakeRemote(), opts)
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cerr.Field != tt.field {
				t.Fatalf("expected field %s, got %s (%v)", tt.field, cerr.Field, err)
			}
			if !errors.Is(err, ErrConfiguration) || !strings.HasPrefix(err.Error(), "configuration: ") {
				t.Fatalf("unexpected error form %v", err)
			}
		})
	}
}

func TestFileSetPaths(t *testing.T) {
	fs := FileSet{SourceFolder: "src/main/resources", BaseName: "messages.properties", RemotePath: "/app/lang/"}
	if got := fs.RemoteFilePath(); got != "app/lang/messages.properties" {
		t.Fatalf("unexpected remote path %q", got)
	}
	if got := (FileSet{BaseName: "a.nsh"}).RemoteFilePath(); got != "a.nsh" {
		t.Fatalf("unexpected remote path %q", got)
	}
}
