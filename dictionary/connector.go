package dictionary

// Connector is the connection-cost provider abstraction (C4): given a
// right id (of the preceding node) and a left id (of the following
// node), it returns an integer connection cost.
type Connector interface {
	NumLeft() int
	NumRight() int
	Cost(rightID, leftID uint16) int32
	MapConnectionIDs(mapper *ConnIdMapper)
}

// MatrixConnector is a dense num_right x num_left i16 grid.
type MatrixConnector struct {
	data     []int16
	numRight int
	numLeft  int
}

// NewMatrixConnector builds a dense connector from a row-major
// num_right x num_left grid.
func NewMatrixConnector(data []int16, numRight, numLeft int) (*MatrixConnector, error) {
	if len(data) != numRight*numLeft {
		return nil, errInvalidArgument("matrix", "data length does not match num_right * num_left")
	}
	return &MatrixConnector{data: data, numRight: numRight, numLeft: numLeft}, nil
}

func (c *MatrixConnector) NumLeft() int  { return c.numLeft }
func (c *MatrixConnector) NumRight() int { return c.numRight }

// Cost returns grid[right*num_left + left] widened to i32. Bounds are
// not re-checked per call; they are established at load time.
func (c *MatrixConnector) Cost(rightID, leftID uint16) int32 {
	return int32(c.data[int(rightID)*c.numLeft+int(leftID)])
}

// MapConnectionIDs permutes rows and columns so that cost(r', l') after
// mapping equals the original cost(mapper.InvRight(r'), mapper.InvLeft(l')).
func (c *MatrixConnector) MapConnectionIDs(mapper *ConnIdMapper) {
	newData := make([]int16, len(c.data))
	for r := 0; r < c.numRight; r++ {
		newR := int(mapper.Right(uint16(r)))
		for l := 0; l < c.numLeft; l++ {
			newL := int(mapper.Left(uint16(l)))
			newData[newR*c.numLeft+newL] = c.data[r*c.numLeft+l]
		}
	}
	c.data = newData
}
