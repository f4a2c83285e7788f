package executor

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/ShapelessCat/leveled-signal-proc/config"
	"github.com/ShapelessCat/leveled-signal-proc/errors"
	"github.com/ShapelessCat/leveled-signal-proc/logger"
)

// Run drives the engine against a JSONL patch stream read from r,
// writing one JSON object per emitted metric record to w, using the
// default tuning configuration. It implements spec.md §4.F's event
// loop: parse, apply, merge simultaneous moments, evaluate, decide to
// emit, write.
func Run(doc *Document, r io.Reader, w io.Writer) error {
	return RunWithConfig(doc, r, w, config.Default())
}

// RunWithConfig is Run with an explicit tuning configuration. The patch
// loop's own log lines carry a freshly generated run id, so concurrent
// lsprun invocations' interleaved logs stay distinguishable; warnings
// and traces logged inside the Engine go through the global logger and
// do not carry it.
//
// A patch line that fails to parse is logged and skipped rather than
// aborting the run, per spec.md §7's patch_parse error kind; a
// structural IR problem surfacing mid-evaluation is fatal and returned.
func RunWithConfig(doc *Document, r io.Reader, w io.Writer, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}
	ctx := logger.WithJobID(context.Background(), uuid.NewString())
	log := logger.LoggerFromContext(ctx)

	eng, err := NewEngineWithConfig(doc, cfg)
	if err != nil {
		return err
	}
	out := newOutputWriter(w)

	scanner := bufio.NewScanner(r)
	bufSize := cfg.Run.ReadBufferBytes
	maxSize := cfg.Run.MaxLineBytes
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	if maxSize <= 0 {
		maxSize = 16 * 1024 * 1024
	}
	scanner.Buffer(make([]byte, bufSize), maxSize)

	verbosity := logger.Verbosity()
	traceParse := logger.ShouldShowPatchParse(verbosity)
	dumpRaw := logger.ShouldShowRawPatchBody(verbosity)

	var pendingTS int64
	var havePending bool

	flush := func(ts int64) error {
		records, err := eng.closeMoment(ts)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := out.write(rec); err != nil {
				return err
			}
		}
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var patch map[string]interface{}
		if err := json.Unmarshal([]byte(line), &patch); err != nil {
			log.Warnw("skipping unparsable patch line", "error", err.Error())
			continue
		}
		ts, err := extractTimestamp(eng.schema.timestampKey, patch)
		if err != nil {
			log.Warnw("skipping patch with unparsable timestamp", "error", err.Error())
			continue
		}
		if traceParse {
			log.Debugw("parsed patch line", logger.FieldMomentNS, ts, "field_count", len(patch))
		}
		if dumpRaw {
			log.Debugw("raw patch body", "line", line)
		}

		if havePending && (!eng.mergeSimultaneous || ts != pendingTS) {
			if err := flush(pendingTS); err != nil {
				return err
			}
		}

		eng.schema.applyPatch(eng, patch)
		pendingTS = ts
		havePending = true

		if !eng.mergeSimultaneous {
			if err := flush(pendingTS); err != nil {
				return err
			}
			havePending = false
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "failed reading patch stream")
	}
	if havePending {
		if err := flush(pendingTS); err != nil {
			return err
		}
	}
	return out.flush()
}

func extractTimestamp(key string, patch map[string]interface{}) (int64, error) {
	raw, ok := patch[key]
	if !ok {
		return 0, errors.Newf("patch_parse: patch missing timestamp key %q", key)
	}
	return coerceTimestamp(raw)
}
