package sync

import "github.com/ethereum/go-ethereum/common"

type EVMBlockHeader struct {
	Num        uint64
	Hash       common.Hash
	ParentHash common.Hash
	Timestamp  uint64
}

// BlockRange is an inclusive range of blocks
type BlockRange struct {
	FromBlock uint64
	ToBlock   uint64
}

// ChunkRanges splits [fromBlock, toBlock] into ranges of at most chunkSize blocks.
// When reverse is true the ranges are returned from the newest to the oldest.
func ChunkRanges(fromBlock, toBlock, chunkSize uint64, reverse bool) []BlockRange {
	if fromBlock > toBlock {
		return nil
	}
	if chunkSize == 0 {
		chunkSize = 1
	}
	ranges := []BlockRange{}
	if reverse {
		end := toBlock
		for {
			start := fromBlock
			if end-fromBlock >= chunkSize {
				start = end - chunkSize + 1
			}
			ranges = append(ranges, BlockRange{FromBlock: start, ToBlock: end})
			if start == fromBlock {
				return ranges
			}
			end = start - 1
		}
	}
	start := fromBlock
	for {
		end := toBlock
		if toBlock-start >= chunkSize {
			end = start + chunkSize - 1
		}
		ranges = append(ranges, BlockRange{FromBlock: start, ToBlock: end})
		if end == toBlock {
			return ranges
		}
		start = end + 1
	}
}
