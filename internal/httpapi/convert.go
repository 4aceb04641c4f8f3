package httpapi

import (
	"time"

	"github.com/Furqan3/bustracker/internal/tracker/store"
	"github.com/Furqan3/bustracker/internal/tracker/types"
)

func latestFixFromRecord(rec store.FixRecord) types.LatestFixResponse {
	return types.LatestFixResponse{
		Latitude:   rec.Latitude,
		Longitude:  rec.Longitude,
		Timestamp:  rec.DeviceTimestamp,
		Datetime:   rec.ReceivedAt.Format(time.RFC3339Nano),
		Satellites: rec.Satellites,
	}
}

func fixEntryFromRecord(rec store.FixRecord) types.FixEntry {
	return types.FixEntry{
		Latitude:   rec.Latitude,
		Longitude:  rec.Longitude,
		Timestamp:  rec.DeviceTimestamp,
		Datetime:   rec.ReceivedAt.Format(time.RFC3339Nano),
		Satellites: rec.Satellites,
	}
}

func fixEntriesFromRecords(recs []store.FixRecord) []types.FixEntry {
	out := make([]types.FixEntry, len(recs))
	for i, rec := range recs {
		out[i] = fixEntryFromRecord(rec)
	}
	return out
}

func latestScanFromRecord(rec store.ScanRecord) types.LatestScanResponse {
	return types.LatestScanResponse{
		UID:       rec.CardUID,
		Timestamp: rec.DeviceTimestamp,
		Datetime:  rec.ReceivedAt.Format(time.RFC3339Nano),
		Action:    string(rec.Outcome),
	}
}

func scanEntryFromRecord(rec store.ScanRecord) types.ScanEntry {
	return types.ScanEntry{
		UID:        rec.CardUID,
		Timestamp:  rec.DeviceTimestamp,
		Datetime:   rec.ReceivedAt.Format(time.RFC3339Nano),
		Action:     string(rec.Outcome),
		SeatsAfter: rec.FilledAfter,
	}
}

func scanEntriesFromRecords(recs []store.ScanRecord) []types.ScanEntry {
	out := make([]types.ScanEntry, len(recs))
	for i, rec := range recs {
		out[i] = scanEntryFromRecord(rec)
	}
	return out
}
