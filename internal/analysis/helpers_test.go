package analysis

import (
	"fmt"

	"github.com/nao1215/seoscan/internal/model"
)

// page returns an indexable 200 page with a unique URL derived from id.
func page(id int64, depth int) model.Page {
	return model.Page{
		ID:              id,
		URL:             fmt.Sprintf("https://example.com/p%d", id),
		Title:           fmt.Sprintf("Page %d", id),
		MetaDescription: fmt.Sprintf("Description of page %d", id),
		HTTPStatus:      200,
		WordCount:       1000,
		Depth:           depth,
		IsIndexable:     true,
	}
}

func link(src, dst int64) model.Link {
	return model.Link{SourcePageID: src, DestinationPageID: &dst}
}

func externalLink(src int64, url string, status int) model.Link {
	return model.Link{SourcePageID: src, DestinationURL: url, HTTPStatus: status}
}

func alt(s string) *string { return &s }

func keywords(words ...string) []model.Keyword {
	kws := make([]model.Keyword, len(words))
	for i, w := range words {
		kws[i] = model.Keyword{Word: w, Count: len(words) - i}
	}
	return kws
}

func refIDs(refs []model.PageRef) []int64 {
	ids := make([]int64, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}
