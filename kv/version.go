package kv

import (
	"strconv"
	"time"
)

// CurrentVersion is the schema version this build expects.
const CurrentVersion uint32 = 1

// versionKey is the reserved key in the Default table storing the schema
// version as a 4-byte big-endian integer.
var versionKey = []byte("db_version")

// CheckAndMigrateVersion reads db_version from the Default table, writing
// CurrentVersion if absent, and running in-sequence migrations otherwise.
// Called from Open.
func CheckAndMigrateVersion(d *Database) error {
	tx := d.ReadTx()
	raw, ok, err := tx.getRaw(tableIDDefault, versionKey)
	if err != nil {
		return err
	}
	if !ok {
		wtx := d.WriteTx()
		if err := wtx.putRaw(tableIDDefault, versionKey, encodeVersion(CurrentVersion)); err != nil {
			wtx.Abort()
			return err
		}
		if err := wtx.Commit(); err != nil {
			return err
		}
		d.opts.Logger.Info().Uint32("version", CurrentVersion).Msg("initialized schema version")
		return nil
	}

	current, derr := decodeVersion(raw)
	if derr != nil {
		return errVersion("corrupt db_version value")
	}
	if current == CurrentVersion {
		return nil
	}
	if current > CurrentVersion {
		return errVersion("database schema is newer than this build supports")
	}

	start := time.Now()
	for v := current + 1; v <= CurrentVersion; v++ {
		if err := runMigration(d, v); err != nil {
			return errVersion("migration to version " + strconv.FormatUint(uint64(v), 10) + " failed: " + err.Error())
		}
	}
	d.opts.Logger.Info().
		Uint32("from_version", current).
		Uint32("to_version", CurrentVersion).
		Dur("duration", time.Since(start)).
		Msg("migrated schema version")

	wtx := d.WriteTx()
	if err := wtx.putRaw(tableIDDefault, versionKey, encodeVersion(CurrentVersion)); err != nil {
		wtx.Abort()
		return err
	}
	return wtx.Commit()
}

// runMigration dispatches the in-sequence migration that upgrades the
// database TO schema version v. There are no migrations registered yet
// (CurrentVersion is 1, the initial schema); this dispatch exists so a
// future version bump only adds a case here, per the VersionManager pattern
// this is grounded on.
func runMigration(_ *Database, v uint32) error {
	switch v {
	default:
		return errVersion("no migration registered for version " + strconv.FormatUint(uint64(v), 10))
	}
}

func encodeVersion(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func decodeVersion(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, &DecodeError{Type: "version", Err: errBadVersionLen}
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

var errBadVersionLen = errVersionLen{}

type errVersionLen struct{}

func (errVersionLen) Error() string { return "db_version value must be 4 bytes" }
