package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/secrag/core"
	"github.com/poiesic/secrag/storage"
)

// FilingRepository implements storage.FilingRepository for BadgerDB.
type FilingRepository struct {
	backend *Backend
}

var _ storage.FilingRepository = (*FilingRepository)(nil)

// NewFilingRepository creates a new FilingRepository.
func NewFilingRepository(backend *Backend) (*FilingRepository, error) {
	return &FilingRepository{
		backend: backend,
	}, nil
}

// Close releases resources. FilingRepository has no resources to release.
func (r *FilingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *FilingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddFilings adds one or more filings to storage.
// Re-adding an existing accession overwrites the stored filing, so
// re-running a download is idempotent.
func (r *FilingRepository) AddFilings(ctx context.Context, filings ...*core.Filing) ([]*core.Filing, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, filing := range filings {
			// Use content-based ID if not set
			if filing.Id == 0 {
				filing.Id = core.FilingID(filing.AccessionNumber)
			}

			if filing.InsertedAt.IsZero() {
				filing.InsertedAt = time.Now().UTC()
			}
			filing.UpdatedAt = time.Now().UTC()

			// Store primary record
			key := makeFilingKey(filing.Id)
			value := storage.MarshalFiling(filing)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Accession index
			accKey := makeAccessionKey(filing.AccessionNumber)
			if err := tx.Set(accKey, storage.MarshalID(filing.Id)); err != nil {
				return err
			}

			// CIK index
			cikKey := makeFilingCIKKey(filing.CIK, filing.FilingDate, filing.Id)
			if err := tx.Set(cikKey, storage.MarshalID(filing.Id)); err != nil {
				return err
			}

			// Form type index
			formKey := makeFilingFormKey(filing.FormType, filing.FilingDate, filing.Id)
			if err := tx.Set(formKey, storage.MarshalID(filing.Id)); err != nil {
				return err
			}

			// Date index
			dateKey := makeFilingDateKey(filing.FilingDate, filing.Id)
			if err := tx.Set(dateKey, storage.MarshalID(filing.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return filings, err
}

// GetFiling retrieves a single filing by ID.
func (r *FilingRepository) GetFiling(ctx context.Context, id core.ID) (*core.Filing, error) {
	var result *core.Filing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFilingKey(id)
		var err error
		result, err = readFiling(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetFilings retrieves multiple filings by their IDs.
func (r *FilingRepository) GetFilings(ctx context.Context, ids ...core.ID) ([]*core.Filing, error) {
	var result []*core.Filing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeFilingKey(id)
			filing, err := readFiling(tx, key)
			if err != nil {
				return err
			}
			if filing != nil {
				result = append(result, filing)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetFilingByAccession retrieves a filing by its SEC accession number.
func (r *FilingRepository) GetFilingByAccession(ctx context.Context, accession string) (*core.Filing, error) {
	var result *core.Filing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Look up ID from accession index
		item, err := tx.Get(makeAccessionKey(accession))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var filingID core.ID
		err = item.Value(func(val []byte) error {
			filingID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		// Look up full filing
		result, err = readFiling(tx, makeFilingKey(filingID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetFilingsByCIK retrieves all filings for a company, ordered by filing date.
func (r *FilingRepository) GetFilingsByCIK(ctx context.Context, cik string) ([]*core.Filing, error) {
	return r.scanFilingIndex(makePartialFilingCIKKey(cik))
}

// GetFilingsByForm retrieves all filings of a form type, ordered by filing date.
func (r *FilingRepository) GetFilingsByForm(ctx context.Context, form core.FormType) ([]*core.Filing, error) {
	return r.scanFilingIndex(makePartialFilingFormKey(form))
}

// GetFilingsByDateRange retrieves filings within a time range.
func (r *FilingRepository) GetFilingsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Filing, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Filing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialFilingDateKey(start)
		endKey := makePartialFilingDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			var filingID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				filingID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			filing, err := readFiling(tx, makeFilingKey(filingID))
			if err != nil {
				return err
			}
			if filing != nil {
				results = append(results, filing)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteFilings removes filings by their IDs.
func (r *FilingRepository) DeleteFilings(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeFilingKey(id)

			// Read filing to get metadata for index cleanup
			filing, err := readFiling(tx, key)
			if err != nil {
				return err
			}
			if filing == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeAccessionKey(filing.AccessionNumber)); err != nil {
				return err
			}
			if err := tx.Delete(makeFilingCIKKey(filing.CIK, filing.FilingDate, filing.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeFilingFormKey(filing.FormType, filing.FilingDate, filing.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeFilingDateKey(filing.FilingDate, filing.Id)); err != nil {
				return err
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountFilings returns the total number of stored filings.
func (r *FilingRepository) CountFilings(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(filingRecordPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Helper methods

// scanFilingIndex walks an index prefix and resolves the referenced filings.
// Composite index keys carry the filing date, so results come back in
// date order.
func (r *FilingRepository) scanFilingIndex(prefix []byte) ([]*core.Filing, error) {
	var results []*core.Filing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var filingID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				filingID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			filing, err := readFiling(tx, makeFilingKey(filingID))
			if err != nil {
				return err
			}
			if filing != nil {
				results = append(results, filing)
			}
		}
		return nil
	}, false)
	return results, err
}

// readFiling reads a filing from the transaction.
func readFiling(tx *badger.Txn, key []byte) (*core.Filing, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var filing *core.Filing
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		filing, unmarshalErr = storage.UnmarshalFiling(val)
		return unmarshalErr
	})
	return filing, err
}
