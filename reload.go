// reload.go — hot reload of a previously loaded file.
//
// Reload replaces everything a file contributed while carrying over
// runtime state the script cannot reproduce: instance fields that were
// mutated after construction. Sequence per file id:
//
//  1. parse the new source (a parse error aborts with no state change)
//  2. unregister the file's script handlers
//  3. snapshot dirty fields of the file's instances, keyed by binding name
//  4. drop the file's instances from the registry and the global scope
//  5. execute the fresh program
//  6. write snapshotted values back into same-named new instances and
//     restore their dirty sets
//  7. emit "file_reloaded" with {file: id}
//
// Reloading identical source is value-idempotent and never accumulates
// duplicate handlers.
package starlang

// FileReloadedEvent is emitted after every successful Reload.
const FileReloadedEvent = "file_reloaded"

type instanceSnapshot struct {
	values map[string]Value
	dirty  map[string]bool
}

// Reload re-executes src under an already-used file id, preserving dirty
// instance fields. Loading a brand-new id this way is equivalent to Load.
func (in *Interp) Reload(src, file string) (err error) {
	prog, perr := Parse(src, file)
	if perr != nil {
		return perr
	}
	defer in.capture(&err)

	in.removeFileHandlers(file)
	snapshots := in.snapshotFileInstances(file)
	in.dropFileInstances(file)

	in.runProgram(prog, file)
	in.restoreSnapshots(snapshots)

	data := NewMapObject()
	data.Set("file", Str(file))
	in.enqueue(FileReloadedEvent, MapOf(data))
	in.drain()
	return nil
}

func (in *Interp) removeFileHandlers(file string) {
	kept := in.handlers[:0]
	for _, h := range in.handlers {
		if h.file != file {
			kept = append(kept, h)
		}
	}
	in.handlers = kept
}

func (in *Interp) snapshotFileInstances(file string) map[string]instanceSnapshot {
	out := map[string]instanceSnapshot{}
	for _, inst := range in.instances {
		if inst.File != file || len(inst.Dirty) == 0 {
			continue
		}
		snap := instanceSnapshot{values: map[string]Value{}, dirty: map[string]bool{}}
		for field := range inst.Dirty {
			if v, ok := inst.Fields.Get(field); ok {
				snap.values[field] = v
				snap.dirty[field] = true
			}
		}
		out[inst.Name] = snap
	}
	return out
}

func (in *Interp) dropFileInstances(file string) {
	kept := in.instances[:0]
	for _, inst := range in.instances {
		if inst.File == file {
			// Only clear the binding if the script still owns it; a later
			// Set() from Go may have replaced it with something else.
			if cur, ok := in.Global.Get(inst.Name); ok && cur.Tag == VTInstance && cur.Instance() == inst {
				in.Global.Delete(inst.Name)
			}
			continue
		}
		kept = append(kept, inst)
	}
	in.instances = kept
}

// restoreSnapshots writes carried-over values into the re-created
// instances. A snapshot whose binding no longer names an instance (the
// declaration was removed or renamed) is discarded.
func (in *Interp) restoreSnapshots(snapshots map[string]instanceSnapshot) {
	for name, snap := range snapshots {
		v, ok := in.Global.Get(name)
		if !ok || v.Tag != VTInstance {
			continue
		}
		inst := v.Instance()
		for field, val := range snap.values {
			inst.Fields.Set(field, val)
		}
		for field := range snap.dirty {
			inst.Dirty[field] = true
		}
	}
}
