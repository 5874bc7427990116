package bytespool

type NoOpBytesPool struct{}

func (a NoOpBytesPool) Get(n int) []byte {
	return make([]byte, 0, n)
}

func (a NoOpBytesPool) Put([]byte) {
	// just skip
}
