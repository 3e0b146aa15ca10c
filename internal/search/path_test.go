package search

import "testing"

func TestPathBuilderBasic(t *testing.T) {
	pb := NewPathBuilder()
	pb.AddNode("root", "Root", "")
	pb.AddNode("folder1", "Folder 1", "root")
	pb.AddNode("file1", "file.txt", "folder1")

	if got := pb.BuildPath("file1"); got != "Root / Folder 1 / file.txt" {
		t.Errorf("BuildPath(file1) = %q, want %q", got, "Root / Folder 1 / file.txt")
	}
}

func TestPathBuilderSingleNode(t *testing.T) {
	pb := NewPathBuilder()
	pb.AddNode("node1", "Single Node", "")

	if got := pb.BuildPath("node1"); got != "Single Node" {
		t.Errorf("BuildPath(node1) = %q, want %q", got, "Single Node")
	}
}

func TestPathBuilderWithAccount(t *testing.T) {
	pb := NewPathBuilder()
	pb.AddNode("file1", "document.pdf", "folder1")
	pb.AddNode("folder1", "Work", "root")
	pb.AddNode("root", "My Drive", "")

	got := pb.BuildPathWithAccount("file1", "user@example.com", "gdrive")
	want := "user@example.com (Google Drive) / My Drive / Work / document.pdf"
	if got != want {
		t.Errorf("BuildPathWithAccount() = %q, want %q", got, want)
	}
}

func TestPathBuilderLoopDetection(t *testing.T) {
	pb := NewPathBuilder()
	pb.AddNode("a", "Node A", "b")
	pb.AddNode("b", "Node B", "a")

	got := pb.BuildPath("a")
	if got == "" {
		t.Fatal("BuildPath(a) returned empty, want a path containing Node A")
	}
	if !contains(got, "Node A") {
		t.Errorf("BuildPath(a) = %q, want it to contain %q", got, "Node A")
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func TestPathBuilderUnknownNodeReturnsEmpty(t *testing.T) {
	pb := NewPathBuilder()
	if got := pb.BuildPath("missing"); got != "" {
		t.Errorf("BuildPath(missing) = %q, want empty", got)
	}
}
