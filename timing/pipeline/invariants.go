package pipeline

import "fmt"

// CheckInvariants verifies the structural invariants of the machine.
// A violation is a programming bug in the simulator, not a modelled
// error; the method exists so tests can assert the invariants after
// every cycle.
func (p *Pipeline) CheckInvariants() error {
	if err := p.checkStationTags(p.aluPool); err != nil {
		return err
	}
	if err := p.checkStationTags(p.lsPool); err != nil {
		return err
	}

	for reg, m := range p.rat.Snapshot() {
		tag, renamed := m.Renamed()
		if !renamed {
			continue
		}
		entry, ok := p.rob.Lookup(tag)
		if !ok {
			return fmt.Errorf("RAT[x%d] names dead tag %d", reg, tag)
		}
		if int(entry.Dest) != reg {
			return fmt.Errorf("RAT[x%d] names tag %d with dest x%d", reg, tag, entry.Dest)
		}
	}

	// LSQ order must equal ROB order for the memory-class entries.
	var robMemTags []Tag
	for _, e := range p.rob.Snapshot() {
		if e.Inst.IsMem() {
			robMemTags = append(robMemTags, e.Tag)
		}
	}
	lsq := p.lsq.Snapshot()
	if len(lsq) != len(robMemTags) {
		return fmt.Errorf("LSQ holds %d entries, ROB holds %d memory ops", len(lsq), len(robMemTags))
	}
	for i, e := range lsq {
		if e.Tag != robMemTags[i] {
			return fmt.Errorf("LSQ[%d] tag %d != ROB memory order tag %d", i, e.Tag, robMemTags[i])
		}
	}

	s := p.stats
	if s.Committed+s.Discarded+uint64(p.rob.Len()) != s.Issued {
		return fmt.Errorf("committed %d + discarded %d + live %d != issued %d",
			s.Committed, s.Discarded, p.rob.Len(), s.Issued)
	}

	return nil
}

func (p *Pipeline) checkStationTags(pool *StationPool) error {
	var err error
	pool.Each(func(st *Station) {
		if err != nil {
			return
		}
		for _, q := range []Tag{st.Qj, st.Qk} {
			if q == NoTag {
				continue
			}
			if _, ok := p.rob.Lookup(q); !ok {
				err = fmt.Errorf("%s station for %s waits on dead tag %d", pool.Name(), st.Inst, q)
			}
		}
		if _, ok := p.rob.Lookup(st.Dest); !ok {
			err = fmt.Errorf("%s station for %s has dead destination tag %d", pool.Name(), st.Inst, st.Dest)
		}
	})
	return err
}
