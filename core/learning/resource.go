package learning

// Resource is a leaf content item: a file, video or audio with a licence and
// an optional stored attachment.
type Resource struct {
	Base
	Type     ResourceType   `json:"type"`
	Duration Duration       `json:"duration"`
	Licence  Licence        `json:"licence"`
	Access   ResourceAccess `json:"access"`
	Reuse    Reuse          `json:"reuse"`

	// Attachment is the storage path of the uploaded media, empty when none.
	Attachment string `json:"attachment,omitempty"`

	// Activities holds the hydrated containers, used by the
	// ExistingActivities access rule; not always loaded.
	Activities []*Activity `json:"-"`
}
