package deque

import (
	"go.uber.org/zap"
)

const chunkSize = 32

func (d *Deque[T]) slot(index int) *T {
	return &d.chunks[index/chunkSize][index%chunkSize]
}

func (d *Deque[T]) newChunks(chunks [][]T) error {
	for i := range chunks {
		chunk, err := d.alloc.Allocate(chunkSize)
		if err != nil {
			d.release(chunks[:i])
			return err
		}
		chunks[i] = chunk
	}
	return nil
}

func (d *Deque[T]) release(chunks [][]T) {
	for i, chunk := range chunks {
		d.alloc.Deallocate(chunk)
		chunks[i] = nil
	}
}

// growBack replaces chunk table with one of 2n+1 chunks, new chunks appended after the existing ones.
func (d *Deque[T]) growBack() error {
	count := len(d.chunks)
	table, err := d.table.Allocate(2*count + 1)
	if err != nil {
		return err
	}
	if err := d.newChunks(table[count:]); err != nil {
		d.table.Deallocate(table)
		return err
	}

	copy(table, d.chunks)
	d.table.Deallocate(d.chunks)
	d.chunks = table

	d.log.Debug("Chunk table grown at back", zap.Int("chunks", len(table)))
	return nil
}

// growFront replaces chunk table with one of 2n+1 chunks, n+1 new chunks prepended before the existing
// ones. Start offset is moved so logical positions stay the same.
func (d *Deque[T]) growFront() error {
	count := len(d.chunks)
	table, err := d.table.Allocate(2*count + 1)
	if err != nil {
		return err
	}
	if err := d.newChunks(table[:count+1]); err != nil {
		d.table.Deallocate(table)
		return err
	}

	copy(table[count+1:], d.chunks)
	d.table.Deallocate(d.chunks)
	d.chunks = table
	d.start += (count + 1) * chunkSize

	d.log.Debug("Chunk table grown at front", zap.Int("chunks", len(table)), zap.Int("start", d.start))
	return nil
}

// fill builds storage fitting exactly n elements produced by value. It is transactional: on failure
// constructed elements are destroyed, storage is released and d is not modified.
func (d *Deque[T]) fill(n int, value func(i int) T) error {
	table, err := d.table.Allocate((n + chunkSize - 1) / chunkSize)
	if err != nil {
		return err
	}
	if err := d.newChunks(table); err != nil {
		d.table.Deallocate(table)
		return err
	}

	for i := range n {
		if err := d.alloc.Construct(&table[i/chunkSize][i%chunkSize], value(i)); err != nil {
			for j := range i {
				d.alloc.Destroy(&table[j/chunkSize][j%chunkSize])
			}
			d.release(table)
			d.table.Deallocate(table)
			return err
		}
	}

	d.chunks = table
	d.start = 0
	d.size = n
	return nil
}
