package extract

// ResultKind tags the outcome of an extraction attempt so callers can branch
// on real outcomes instead of inspecting the returned text.
type ResultKind string

const (
	// ResultOK means Text holds extracted content.
	ResultOK ResultKind = "ok"
	// ResultEmpty means the stage ran but found no text; Reason holds an
	// advisory string. Callers treat this as a low-confidence success.
	ResultEmpty ResultKind = "empty"
	// ResultUnsupported means the file extension is not handled.
	ResultUnsupported ResultKind = "unsupported"
	// ResultError means the stage itself failed; Err holds the cause.
	ResultError ResultKind = "error"
)

// Result is the tagged outcome of Extractor.Extract. Exactly one of Text,
// Reason or Err is meaningful depending on Kind.
type Result struct {
	Kind   ResultKind
	Text   string
	Reason string
	Err    error
}

// Content returns the text a caller should persist as raw content: extracted
// text for ResultOK, the advisory string otherwise. Empty for ResultError.
func (r Result) Content() string {
	switch r.Kind {
	case ResultOK:
		return r.Text
	case ResultEmpty, ResultUnsupported:
		return r.Reason
	default:
		return ""
	}
}

func ok(text string) Result {
	return Result{Kind: ResultOK, Text: text}
}

func empty(reason string) Result {
	return Result{Kind: ResultEmpty, Reason: reason}
}

func failure(err error) Result {
	return Result{Kind: ResultError, Err: err}
}
