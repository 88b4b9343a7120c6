package artifact

// Artifact is a rendered file of a generated project.
type Artifact struct {
	Kind    Kind
	Path    string
	Content string
	Digest  Hash
}

// New builds an artifact for kind with its content digest computed.
func New(kind Kind, content string) Artifact {
	return Artifact{
		Kind:    kind,
		Path:    kind.Path(),
		Content: content,
		Digest:  HashFile([]byte(content)),
	}
}

// Size returns the content length in bytes.
func (a Artifact) Size() int {
	return len(a.Content)
}
