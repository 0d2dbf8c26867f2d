package summarizer

// Formatter renders a Summary as the file contents written by Writer.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc lets a plain function serve as a Formatter.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string { return f(summary) }
