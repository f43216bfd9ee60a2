package model

const (
	MaterialTypeLink = "LINK"
	MaterialTypeFile = "FILE"

	// MaterialSizeNone is the size shown for materials without a backing file.
	MaterialSizeNone = "-"

	// UploadsURLPrefix is the public path uploaded files are served under.
	UploadsURLPrefix = "/uploads/"
)

type Material struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	DateAdded string `json:"dateAdded"`
	Size      string `json:"size"`
	URL       string `json:"url"`
}

func (m Material) IsLink() bool {
	return m.Type == MaterialTypeLink
}
