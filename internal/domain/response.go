package domain

// StructuredSection is one named, length-bounded unit of a structured
// answer. Images and Tables hold the media ids assigned to the section;
// the structurer assigns at most one of each, except for the trailing
// overflow section which lists everything left over.
type StructuredSection struct {
	Title  string
	Body   string
	Images []string
	Tables []string
}

// ResponseMetadata summarizes a structured answer for the caller.
type ResponseMetadata struct {
	Role         Role
	SectionCount int
	ImagesUsed   int
	TablesUsed   int
	SourceCount  int
}

// ResponseEnvelope is the terminal entity of the answer pipeline: an
// ordered list of sections plus an overall title and metadata. It is
// streamed out section by section and then discarded.
type ResponseEnvelope struct {
	Title    string
	Sections []StructuredSection
	Metadata ResponseMetadata
}
