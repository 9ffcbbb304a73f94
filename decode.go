package fitrecord

import "github.com/lucasjlepore/fitrecord/fitwire"

// DecodeRecords decodes a complete FIT file held in memory and returns its
// Record samples in file order.
//
// The buffer is validated first: a file that fails the structural/CRC check
// returns *fitwire.IntegrityError and decode is not attempted. A structural
// failure partway through decoding returns *fitwire.DecodeError; no partial
// sample list is returned in either case.
func DecodeRecords(data []byte) ([]Sample, error) {
	if err := fitwire.CheckIntegrity(data); err != nil {
		return nil, err
	}
	var ex Extractor
	if err := fitwire.Decode(data, &ex); err != nil {
		return nil, err
	}
	return ex.Samples(), nil
}
