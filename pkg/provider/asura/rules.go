package asura

import "manhwaverse/pkg/engine/scraper"

// Selector fallback tables for the MangaStream-style Wordpress theme.
// Each table is tried in priority order; the site has shipped several
// markup generations and older pages still use the later entries.

// cardSelectors locate manga cards on listing, genre, and search pages.
var cardSelectors = []string{
	"div.bs div.bsx",
	"div.bsx",
	"div.utao.styletwo",
	"div.bs",
}

// cardTitleRules extract the title from one card.
var cardTitleRules = scraper.RuleSet{
	{Selector: "a[href]", Attr: "title", Valid: scraper.NonEmpty},
	{Selector: "h4.tt"},
	{Selector: "h3"},
	{Selector: "div.tt"},
	{Selector: "h4"},
}

// cardCoverRules extract the cover image URL. data-src comes first
// because covers below the fold are lazy-loaded.
var cardCoverRules = scraper.RuleSet{
	{Selector: "img", Attr: "data-src"},
	{Selector: "img", Attr: "src"},
	{Selector: "img", Attr: "data-lazy-src"},
}

// cardChapterRules extract the latest-chapter label.
var cardChapterRules = scraper.RuleSet{
	{Selector: "div.epxs"},
	{Selector: "ul li a"},
	{Selector: ".chapternum"},
	{Selector: ".chapter-title"},
}

// Detail page field rules, applied inside div.main-info.
var (
	detailTitleRules = scraper.RuleSet{
		{Selector: "h1.entry-title"},
	}
	detailCoverRules = scraper.RuleSet{
		{Selector: "div.thumb img", Attr: "src"},
		{Selector: "div.thumb img", Attr: "data-src"},
	}
	detailDescriptionRules = scraper.RuleSet{
		{Selector: `div.entry-content[itemprop="description"] p`},
		{Selector: "div.entry-content p"},
	}
	detailRatingRules = scraper.RuleSet{
		{Selector: `div.num[itemprop="ratingValue"]`, Valid: scraper.NumericRating},
	}
	detailStatusRules = scraper.RuleSet{
		{Selector: ".imptdt i"},
	}
)

// readerSelectors locate the image-bearing region of a chapter page.
var readerSelectors = []string{
	"#readerarea",
	".reading-content",
	".reader-area",
	"#reading-content",
	".chapter-content",
}
