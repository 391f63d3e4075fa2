package story

// Paginate groups paragraphs into fixed-size pages and truncates the
// result to maxPages, discarding excess trailing paragraphs. It is pure:
// empty input yields no pages.
func Paginate(paragraphs []string, pageSize, maxPages int) [][]string {
	if pageSize < 1 || maxPages < 1 {
		return nil
	}
	var pages [][]string
	for i := 0; i < len(paragraphs); i += pageSize {
		end := i + pageSize
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		pages = append(pages, paragraphs[i:end])
		if len(pages) == maxPages {
			break
		}
	}
	return pages
}
