package reg

// File is an in-memory register file. It counts accesses so callers can
// assert how much I/O an operation performed.
type File struct {
	Reads  int
	Writes int

	regs [256]uint8
}

// ReadReg implements Registers.
func (f *File) ReadReg(addr uint8) (uint8, error) {
	f.Reads++
	return f.regs[addr], nil
}

// WriteReg implements Registers.
func (f *File) WriteReg(addr, val uint8) error {
	f.Writes++
	f.regs[addr] = val
	return nil
}

// Peek reads a register without counting.
func (f *File) Peek(addr uint8) uint8 {
	return f.regs[addr]
}

// Poke writes a register without counting.
func (f *File) Poke(addr, val uint8) {
	f.regs[addr] = val
}

// PeekField reads a field without counting.
func (f *File) PeekField(fd Field) uint8 {
	return fd.Extract(f.regs[fd.Addr])
}

// PokeField writes a field without counting.
func (f *File) PokeField(fd Field, val uint8) {
	f.regs[fd.Addr] = fd.Insert(f.regs[fd.Addr], val)
}

// Snapshot copies the whole register file.
func (f *File) Snapshot() [256]uint8 {
	return f.regs
}

// Clear zeroes all registers and counters.
func (f *File) Clear() {
	*f = File{}
}
