package bomex

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/bomex/components"
	"github.com/tsawler/bomex/interpret"
	"github.com/tsawler/bomex/learning"
	"github.com/tsawler/bomex/model"
	"github.com/tsawler/bomex/tables"
)

// Pipeline orchestrates the extraction tiers. Per-document processing is
// synchronous and deterministic; independent documents may run through
// separate Pipeline instances concurrently. The only shared state is the
// optional learning engine, which synchronizes internally.
type Pipeline struct {
	opts    Options
	tables  *tables.Extractor
	learner *learning.Engine
}

// New creates a pipeline with default options.
func New() *Pipeline {
	p := &Pipeline{
		opts:   defaultOptions(),
		tables: tables.NewExtractor(),
	}
	return p
}

// WithOptions replaces the pipeline options.
func (p *Pipeline) WithOptions(opts Options) *Pipeline {
	p.opts = opts
	p.tables.Configure(tables.Config{MinHeaderScore: opts.MinHeaderScore})
	return p
}

// WithLearner attaches a learning engine; every extracted result is then
// annotated with calibrated confidence scores.
func (p *Pipeline) WithLearner(engine *learning.Engine) *Pipeline {
	p.learner = engine
	return p
}

// Extract produces a bill of materials for the document. Table items win
// outright when any page carries a recognizable BOM table; otherwise the
// text and geometry fallbacks run, and a placeholder item guarantees the
// result is never empty.
func (p *Pipeline) Extract(doc *model.Document) (*model.ExtractionResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrMalformedDocument)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrMalformedDocument)
	}

	items, columns, pagesUsed, tablesChecked := p.extractTables(doc)
	if len(items) > 0 {
		result := &model.ExtractionResult{
			Items:           items,
			DetectedColumns: columns,
			Metadata: map[string]any{
				model.MetaSource:        sourceOf(doc),
				model.MetaPages:         pagesUsed,
				model.MetaTablesChecked: tablesChecked,
				model.MetaMode:          model.ModeTable,
			},
		}
		p.finish(result)
		return result, nil
	}

	result := p.interpretWithoutTable(doc)
	result.Metadata[model.MetaSource] = sourceOf(doc)
	result.Metadata[model.MetaTablesChecked] = tablesChecked
	p.finish(result)
	return result, nil
}

// ExtractStrict runs table recognition only. It returns ErrNoBOM when no
// page carries a recognizable BOM table; the fallback tiers never run.
func (p *Pipeline) ExtractStrict(doc *model.Document) (*model.ExtractionResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrMalformedDocument)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrMalformedDocument)
	}

	items, columns, pagesUsed, tablesChecked := p.extractTables(doc)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoBOM, sourceOf(doc))
	}

	result := &model.ExtractionResult{
		Items:           items,
		DetectedColumns: columns,
		Metadata: map[string]any{
			model.MetaSource:        sourceOf(doc),
			model.MetaPages:         pagesUsed,
			model.MetaTablesChecked: tablesChecked,
			model.MetaMode:          model.ModeTable,
		},
	}
	p.finish(result)
	return result, nil
}

// extractTables runs every deduplicated grid of every page through the
// table extractor.
func (p *Pipeline) extractTables(doc *model.Document) ([]*model.BOMItem, []string, []int, int) {
	var items []*model.BOMItem
	columnSet := make(map[string]bool)
	pageSet := make(map[int]bool)
	tablesChecked := 0

	for _, page := range doc.Pages {
		for _, grid := range tables.DedupeGrids(page.Tables) {
			tablesChecked++
			gridItems, gridColumns := p.tables.Extract(grid.Rows)
			if len(gridItems) == 0 {
				continue
			}
			items = append(items, gridItems...)
			for _, column := range gridColumns {
				columnSet[column] = true
			}
			pageSet[page.Number] = true
		}
	}

	columns := make([]string, 0, len(columnSet))
	for column := range columnSet {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	return items, columns, sortedPages(pageSet), tablesChecked
}

// interpretWithoutTable builds a synthetic BOM from annotations and
// geometry, sharing one position allocator so the two sources never
// collide.
func (p *Pipeline) interpretWithoutTable(doc *model.Document) *model.ExtractionResult {
	alloc := interpret.NewAllocator()
	interpreter := interpret.NewInterpreter(alloc)

	var items []*model.BOMItem
	pageSet := make(map[int]bool)
	linesChecked := 0

	for _, page := range doc.Pages {
		if page.Text == "" {
			continue
		}
		pageItems, checked := interpreter.InterpretLines(strings.Split(page.Text, "\n"))
		linesChecked += checked
		if len(pageItems) > 0 {
			items = append(items, pageItems...)
			pageSet[page.Number] = true
		}
	}
	annotationItems := len(items)

	clusterer := interpret.NewClusterer(alloc)
	clusterer.Configure(p.opts.Clusterer)
	geometryItems, shapesConsidered := clusterer.Cluster(doc.Pages)
	items = append(items, geometryItems...)
	for _, item := range geometryItems {
		for _, page := range strings.Split(item.Extra("pages"), ",") {
			if n, err := strconv.Atoi(page); err == nil {
				pageSet[n] = true
			}
		}
	}

	metadata := map[string]any{
		model.MetaMode:             model.ModeInterpreted,
		model.MetaAnnotationItems:  annotationItems,
		model.MetaGeometryItems:    len(geometryItems),
		model.MetaLinesChecked:     linesChecked,
		model.MetaShapesConsidered: shapesConsidered,
	}
	if len(pageSet) > 0 {
		metadata[model.MetaPages] = sortedPages(pageSet)
	}

	if len(items) == 0 {
		items = append(items, placeholderItem(alloc))
		metadata[model.MetaFallbackPlaceholder] = 1
	}

	return &model.ExtractionResult{
		Items:           items,
		DetectedColumns: model.InferDetectedColumns(items),
		Metadata:        metadata,
	}
}

// placeholderItem is emitted when neither annotations nor geometry yield
// anything, so a result is never empty.
func placeholderItem(alloc *interpret.Allocator) *model.BOMItem {
	item := model.NewBOMItem()
	if alloc.Claim("1") {
		item.Position = "1"
	} else {
		item.Position = alloc.Next()
	}
	item.Description = "Automatisch generierte Sammelposition"
	item.Quantity = model.NewQuantity(1)
	item.Unit = "assembly"
	item.Comment = "Keine interpretierbaren Komponenten gefunden – bitte Zeichnung prüfen."
	item.Extras["source"] = "fallback"
	item.Extras["confidence"] = "sehr gering"
	return item
}

// finish applies component classification and confidence annotation.
func (p *Pipeline) finish(result *model.ExtractionResult) {
	if p.opts.ClassifyComponents {
		components.Apply(result.Items)
	}
	if p.learner != nil {
		p.learner.Annotate(result)
	}
}

func sourceOf(doc *model.Document) string {
	if doc.Source == "" {
		return "<unknown>"
	}
	return doc.Source
}

func sortedPages(pages map[int]bool) []int {
	numbers := make([]int, 0, len(pages))
	for number := range pages {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)
	return numbers
}
