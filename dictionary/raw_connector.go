package dictionary

// RawConnector is the sparse feature-template scorer variant of C4. Each
// left id and right id is represented as feat_template_size feature
// groups of eight packed lanes (U31x8). cost(r, l) sums one partial score
// per (template, lane) pair, looked up in a double-array Scorer keyed by
// an encoded (right_lane, left_lane) pair; missing keys contribute zero.
//
// When SIMD is available the eight lanes of a template group are
// vectorized; here they are summed scalarly, which is defined to produce
// identical values (see spec design notes on Scorer SIMD).
type RawConnector struct {
	rightFeatIDs [][]U31x8 // len numRight, each len featTemplateSize
	leftFeatIDs  [][]U31x8 // len numLeft, each len featTemplateSize
	templateSize int
	scorer       *Scorer
}

// NewRawConnector builds a RawConnector from per-id feature lane tables
// and a scorer.
func NewRawConnector(rightFeatIDs, leftFeatIDs [][]U31x8, templateSize int, scorer *Scorer) (*RawConnector, error) {
	for _, v := range rightFeatIDs {
		if len(v) != templateSize {
			return nil, errInvalidArgument("raw_connector", "right feature row length mismatch")
		}
	}
	for _, v := range leftFeatIDs {
		if len(v) != templateSize {
			return nil, errInvalidArgument("raw_connector", "left feature row length mismatch")
		}
	}
	return &RawConnector{
		rightFeatIDs: rightFeatIDs,
		leftFeatIDs:  leftFeatIDs,
		templateSize: templateSize,
		scorer:       scorer,
	}, nil
}

func (c *RawConnector) NumLeft() int  { return len(c.leftFeatIDs) }
func (c *RawConnector) NumRight() int { return len(c.rightFeatIDs) }

// Cost sums, over every (template, lane) pair, the scorer's lookup of
// the right/left lane values at that slot.
func (c *RawConnector) Cost(rightID, leftID uint16) int32 {
	rfeat := c.rightFeatIDs[rightID]
	lfeat := c.leftFeatIDs[leftID]
	var total int32
	for t := 0; t < c.templateSize; t++ {
		rg, lg := rfeat[t], lfeat[t]
		for lane := 0; lane < 8; lane++ {
			slot := int32(t*8 + lane)
			total += c.scorer.Lookup(slot, rg[lane], lg[lane])
		}
	}
	return total
}

// MapConnectionIDs permutes the feature-id tables so index r'/l' holds
// what the original table held at mapper's inverse.
func (c *RawConnector) MapConnectionIDs(mapper *ConnIdMapper) {
	newRight := make([][]U31x8, len(c.rightFeatIDs))
	for r, row := range c.rightFeatIDs {
		newRight[mapper.Right(uint16(r))] = row
	}
	newLeft := make([][]U31x8, len(c.leftFeatIDs))
	for l, row := range c.leftFeatIDs {
		newLeft[mapper.Left(uint16(l))] = row
	}
	c.rightFeatIDs = newRight
	c.leftFeatIDs = newLeft
}
