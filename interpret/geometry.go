package interpret

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/bomex/model"
)

// pointToMM converts page units (points) to millimetres.
const pointToMM = 25.4 / 72.0

// Shape classes produced by the clusterer.
const (
	shapeRectangle = "rectangle"
	shapeCircle    = "circle"
	shapeCurve     = "curve"
)

// shapeLabels are the human-readable (German) names used in item
// descriptions and extras.
var shapeLabels = map[string]string{
	shapeRectangle: "Rechteck",
	shapeCircle:    "Kreis",
	shapeCurve:     "Kontur",
}

// shapeComponents maps shape classes to pipe-fabrication component
// families for the learner's component feature.
var shapeComponents = map[string][2]string{
	shapeRectangle: {"Blech", "blech"},
	shapeCircle:    {"Rohr", "rohr"},
}

// ClustererConfig holds shape filtering parameters.
type ClustererConfig struct {
	// MinExtent is the smallest shape dimension considered, in points.
	MinExtent float64
	// BorderRatio treats shapes spanning this fraction of the page as
	// frames.
	BorderRatio float64
	// EdgeMargin treats rectangles this close to a page edge as borders,
	// in points.
	EdgeMargin float64
}

// DefaultClustererConfig returns the default configuration.
func DefaultClustererConfig() ClustererConfig {
	return ClustererConfig{
		MinExtent:   10,
		BorderRatio: 0.9,
		EdgeMargin:  2,
	}
}

// Clusterer groups vector shapes into pseudo BOM items. Near-identical
// shapes across pages land in the same bucket; the bucket's occurrence
// count becomes the item quantity.
type Clusterer struct {
	alloc *Allocator
	cfg   ClustererConfig
}

// NewClusterer creates a clusterer drawing positions from alloc.
func NewClusterer(alloc *Allocator) *Clusterer {
	return &Clusterer{alloc: alloc, cfg: DefaultClustererConfig()}
}

// Configure sets clusterer parameters.
func (c *Clusterer) Configure(cfg ClustererConfig) {
	c.cfg = cfg
}

type shapeKey struct {
	Type  string
	Major float64
	Minor float64
}

type shapeBucket struct {
	count int
	pages map[int]bool
}

// Cluster buckets the shapes of all pages and converts each bucket into
// an item. It returns the items and the number of shapes considered.
func (c *Clusterer) Cluster(pages []model.Page) ([]*model.BOMItem, int) {
	buckets := make(map[shapeKey]*shapeBucket)
	considered := 0

	for _, page := range pages {
		for _, rect := range page.Rects {
			if !c.keepRect(rect, page) {
				continue
			}
			c.add(buckets, shapeRectangle, rect.Width(), rect.Height(), page.Number)
			considered++
		}

		for _, curve := range page.Curves {
			bounds, ok := curve.Bounds()
			if !ok {
				continue
			}
			width, height := bounds.Width(), bounds.Height()
			if math.Max(width, height) < c.cfg.MinExtent {
				continue
			}
			if c.spansPage(width, height, page) {
				continue
			}
			shapeType := shapeCurve
			if math.Abs(width-height) <= 5 {
				shapeType = shapeCircle
			}
			c.add(buckets, shapeType, width, height, page.Number)
			considered++
		}
	}

	keys := make([]shapeKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	// Deterministic order keeps position assignment stable across runs.
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		if keys[i].Major != keys[j].Major {
			return keys[i].Major < keys[j].Major
		}
		return keys[i].Minor < keys[j].Minor
	})

	var items []*model.BOMItem
	for _, key := range keys {
		bucket := buckets[key]

		item := model.NewBOMItem()
		item.Position = c.alloc.Next()
		item.Description = describeShape(key)
		item.Quantity = model.NewQuantity(float64(bucket.count))
		item.Unit = "pcs"
		item.Extras["source"] = "geometry"
		item.Extras["shape"] = shapeLabels[key.Type]
		item.Extras["pages"] = joinPages(bucket.pages)
		if component, ok := shapeComponents[key.Type]; ok {
			item.Extras["component_type"] = component[0]
			item.Extras["component_code"] = component[1]
			item.Extras["component_source"] = "geometry"
		}
		items = append(items, item)
	}

	return items, considered
}

func (c *Clusterer) keepRect(rect model.Rect, page model.Page) bool {
	width, height := rect.Width(), rect.Height()
	if math.Min(width, height) < c.cfg.MinExtent {
		return false
	}
	if page.Width > 0 && page.Height > 0 {
		if c.spansPage(width, height, page) {
			return false
		}
		// Rectangles hugging a page edge are drawing frames.
		if rect.X0 <= c.cfg.EdgeMargin || rect.Y0 <= c.cfg.EdgeMargin ||
			rect.X1 >= page.Width-c.cfg.EdgeMargin || rect.Y1 >= page.Height-c.cfg.EdgeMargin {
			return false
		}
	}
	return true
}

func (c *Clusterer) spansPage(width, height float64, page model.Page) bool {
	if page.Width <= 0 || page.Height <= 0 {
		return false
	}
	return width >= page.Width*c.cfg.BorderRatio || height >= page.Height*c.cfg.BorderRatio
}

func (c *Clusterer) add(buckets map[shapeKey]*shapeBucket, shapeType string, width, height float64, pageNumber int) {
	key := shapeKey{
		Type:  shapeType,
		Major: roundMM(math.Max(width, height)),
		Minor: roundMM(math.Min(width, height)),
	}
	bucket := buckets[key]
	if bucket == nil {
		bucket = &shapeBucket{pages: make(map[int]bool)}
		buckets[key] = bucket
	}
	bucket.count++
	bucket.pages[pageNumber] = true
}

func roundMM(value float64) float64 {
	return math.Round(value*pointToMM*10) / 10
}

func describeShape(key shapeKey) string {
	label := shapeLabels[key.Type]
	if key.Type == shapeCircle || math.Abs(key.Major-key.Minor) <= 0.2 {
		return fmt.Sprintf("%s Ø %.1f mm", label, key.Major)
	}
	return fmt.Sprintf("%s %.1f × %.1f mm", label, key.Major, key.Minor)
}

func joinPages(pages map[int]bool) string {
	numbers := make([]int, 0, len(pages))
	for number := range pages {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)
	parts := make([]string, len(numbers))
	for i, number := range numbers {
		parts[i] = strconv.Itoa(number)
	}
	return strings.Join(parts, ",")
}
