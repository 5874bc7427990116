package bytespool

// Pool hands out empty byte slices with at least the requested capacity.
type Pool interface {
	Get(n int) []byte
	Put([]byte)
}
