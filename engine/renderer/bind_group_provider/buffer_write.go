package bind_group_provider

// BufferWrite is one pending queue write: Data lands in the buffer bound at
// Binding on Provider, starting at Offset bytes. Writes are batched by the
// renderer so a frame's uniform and storage updates submit together.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
