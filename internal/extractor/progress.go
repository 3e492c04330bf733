package extractor

// Progress provides callbacks for reporting extraction progress.
// Implementations can display progress bars, log messages, or remain silent.
type Progress interface {
	// OnFilterComplete is called after path filtering.
	OnFilterComplete(kept, skipped int)

	// OnTokenizeStart is called before tokenizing files.
	OnTokenizeStart(totalFiles int)

	// OnFileTokenized is called after each file is tokenized.
	OnFileTokenized(path string)

	// OnParseStart is called before parsing candidate headers.
	OnParseStart(totalCandidates int)

	// OnCandidateParsed is called after each candidate header.
	OnCandidateParsed(done, total int)

	// OnComplete is called when extraction completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgress is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgress struct{}

func (NoOpProgress) OnFilterComplete(kept, skipped int) {}
func (NoOpProgress) OnTokenizeStart(totalFiles int)     {}
func (NoOpProgress) OnFileTokenized(path string)        {}
func (NoOpProgress) OnParseStart(totalCandidates int)   {}
func (NoOpProgress) OnCandidateParsed(done, total int)  {}
func (NoOpProgress) OnComplete(stats *Stats)            {}
