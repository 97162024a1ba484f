package engine

import (
	"github.com/cmnord/jep-sub001/internal/models"
)

// Reduce computes the next state from the previous state and one
// action. It is pure: no I/O, no wall clock, no mutation of the input.
// Invalid actions (wrong phase, wrong turn, stale buzz, unknown user)
// return the prior state pointer unchanged, so duplicate or reordered
// delivery of the same event stream is a no-op rather than an error.
func Reduce(s *State, a Action) *State {
	if s == nil || a == nil {
		return s
	}

	switch act := a.(type) {
	case *Join:
		return s.applyJoin(act)
	case *ChangeName:
		return s.applyChangeName(act)
	case *Kick:
		return s.applyKick(act)
	case *TransferPlayer:
		return s.applyTransferPlayer(act)
	case *StartRound:
		return s.applyStartRound(act)
	case *ChooseClue:
		return s.applyChooseClue(act)
	case *Buzz:
		return s.applyBuzz(act)
	case *Answer:
		return s.applyAnswer(act)
	case *SetClueWager:
		return s.applySetClueWager(act)
	case *NextClue:
		return s.applyNextClue(act)
	case *ToggleClock:
		return s.applyToggleClock(act)
	case *Restore:
		return s.applyRestore(act)
	default:
		return s
	}
}

func (s *State) applyJoin(act *Join) *State {
	if act.UserID == "" {
		return s
	}

	p, known := s.Players[act.UserID]
	if known && !p.Left && s.BoardControl != "" {
		return s
	}

	next := s.clone()
	if known {
		next.Players[act.UserID].Left = false
	} else {
		next.Players[act.UserID] = &models.Player{
			UserID:    act.UserID,
			Name:      act.Name,
			JoinOrder: len(next.Players),
		}
	}

	if next.BoardControl == "" {
		next.BoardControl = act.UserID
	}

	return next
}

func (s *State) applyChangeName(act *ChangeName) *State {
	p, known := s.Players[act.UserID]
	if !known || act.Name == "" || p.Name == act.Name {
		return s
	}

	next := s.clone()
	next.Players[act.UserID].Name = act.Name
	return next
}

func (s *State) applyKick(act *Kick) *State {
	p, known := s.Players[act.UserID]
	if !known || p.Left {
		return s
	}

	next := s.clone()
	next.Players[act.UserID].Left = true

	// Control never points at an absent player.
	if next.BoardControl == act.UserID {
		next.BoardControl = next.firstJoinedPresent()
	}

	next.settleDeparture(act.UserID)

	return next
}

// settleDeparture re-evaluates the active clue after a player leaves,
// so the room never waits on someone who is gone. Must be called on a
// clone after the player is marked Left.
func (s *State) settleDeparture(userID string) {
	active := s.ActiveClue
	if s.Phase != PhaseAnswering || active == nil {
		return
	}
	board := s.Board()
	if board == nil {
		return
	}
	clue, ok := board.Clue(active.I, active.J)
	if !ok {
		return
	}

	switch active.Phase {
	case CluePhaseWagering:
		if clue.IsDailyDouble && active.Chooser == userID {
			// The only player who could wager is gone; the clue goes back
			// on the board for the new control holder.
			s.Cells[active.I][active.J] = Cell{Status: CellUnanswered}
			delete(s.Wagers, CellKey(s.Round, active.I, active.J))
			s.ActiveClue = nil
			s.Phase = PhaseInRound
			return
		}
		// The departed player's wager is no longer awaited.
		if s.wageringDone(clue) {
			active.Phase = CluePhaseRevealed
		}
	case CluePhaseRevealed:
		if !clueNeedsWager(clue) {
			return
		}
		if clue.IsDailyDouble && active.Chooser == userID {
			// The chooser wagered but left before answering; the wager is
			// forfeit and the clue closes unscored.
			s.resolveActiveClue()
			return
		}
		if s.allExpectedAnswered(clue) {
			s.resolveActiveClue()
		}
	case CluePhaseBuzzed:
		delete(active.Buzzes, userID)
		winner := buzzWinner(active.Buzzes, active.LockedOut)
		s.Cells[active.I][active.J].BuzzedBy = winner
		if winner == "" {
			active.Phase = CluePhaseRevealed
		}
	}
}

func (s *State) applyTransferPlayer(act *TransferPlayer) *State {
	old, known := s.Players[act.OldUserID]
	if !known || act.NewUserID == "" || act.OldUserID == act.NewUserID {
		return s
	}

	// If the new identity already joined on its own, retire the old one
	// instead of merging two histories.
	if _, taken := s.Players[act.NewUserID]; taken {
		if old.Left {
			return s
		}
		next := s.clone()
		next.Players[act.OldUserID].Left = true
		if next.BoardControl == act.OldUserID {
			next.BoardControl = next.firstJoinedPresent()
		}
		next.settleDeparture(act.OldUserID)
		return next
	}

	next := s.clone()
	p := next.Players[act.OldUserID]
	delete(next.Players, act.OldUserID)
	p.UserID = act.NewUserID
	next.Players[act.NewUserID] = p
	next.remapUser(act.OldUserID, act.NewUserID)
	return next
}

// remapUser rewrites every piece of state keyed by the old user ID.
// Score and history must be preserved exactly.
func (s *State) remapUser(oldID, newID string) {
	if s.BoardControl == oldID {
		s.BoardControl = newID
	}

	for _, byUser := range s.Wagers {
		if wager, ok := byUser[oldID]; ok {
			delete(byUser, oldID)
			byUser[newID] = wager
		}
	}

	for _, byUser := range s.Answers {
		if answer, ok := byUser[oldID]; ok {
			delete(byUser, oldID)
			byUser[newID] = answer
		}
	}

	for i := range s.Cells {
		for j := range s.Cells[i] {
			cell := &s.Cells[i][j]
			if cell.BuzzedBy == oldID {
				cell.BuzzedBy = newID
			}
			if outcome, ok := cell.Outcomes[oldID]; ok {
				delete(cell.Outcomes, oldID)
				cell.Outcomes[newID] = outcome
			}
		}
	}

	if active := s.ActiveClue; active != nil {
		if active.Chooser == oldID {
			active.Chooser = newID
		}
		if delta, ok := active.Buzzes[oldID]; ok {
			delete(active.Buzzes, oldID)
			active.Buzzes[newID] = delta
		}
		if locked, ok := active.LockedOut[oldID]; ok {
			delete(active.LockedOut, oldID)
			active.LockedOut[newID] = locked
		}
	}
}

func (s *State) applyStartRound(act *StartRound) *State {
	if s.Phase != PhasePreview || act.Round != s.Round {
		return s
	}

	board := s.Board()
	if board == nil {
		return s
	}

	p, known := s.Players[act.UserID]
	if !known || p.Left {
		return s
	}

	next := s.clone()
	next.Phase = PhaseInRound
	next.ActiveClue = nil
	next.Cells = make([][]Cell, len(board.Categories))
	for i := range board.Categories {
		next.Cells[i] = make([]Cell, len(board.Categories[i].Clues))
		for j := range next.Cells[i] {
			next.Cells[i][j] = Cell{Status: CellUnanswered}
		}
	}

	if holder, ok := next.Players[next.BoardControl]; next.BoardControl == "" || !ok || holder.Left {
		next.BoardControl = next.firstJoinedPresent()
	}

	return next
}

func (s *State) applyChooseClue(act *ChooseClue) *State {
	if s.Phase != PhaseInRound || s.ActiveClue != nil {
		return s
	}
	if act.UserID == "" || act.UserID != s.BoardControl {
		return s
	}

	board := s.Board()
	if board == nil {
		return s
	}
	clue, ok := board.Clue(act.I, act.J)
	if !ok || s.Cells[act.I][act.J].Status != CellUnanswered {
		return s
	}

	next := s.clone()
	next.Phase = PhaseAnswering
	next.Cells[act.I][act.J].Status = CellRevealed

	phase := CluePhaseRevealed
	if clueNeedsWager(clue) {
		phase = CluePhaseWagering
	}
	next.ActiveClue = &ActiveClue{
		I:         act.I,
		J:         act.J,
		Chooser:   act.UserID,
		Phase:     phase,
		Buzzes:    make(map[string]int64),
		LockedOut: make(map[string]bool),
	}

	return next
}

func (s *State) applySetClueWager(act *SetClueWager) *State {
	active, clue := s.activeMatch(act.I, act.J)
	if active == nil || active.Phase != CluePhaseWagering {
		return s
	}

	p, known := s.Players[act.UserID]
	if !known || p.Left {
		return s
	}
	// Only the chooser wagers on a daily double; every present player
	// wagers on a final clue.
	if clue.IsDailyDouble && act.UserID != active.Chooser {
		return s
	}

	limit := p.Score
	if limit < s.Rules.WagerFloor {
		limit = s.Rules.WagerFloor
	}
	if act.Wager < 0 || act.Wager > limit {
		return s
	}

	next := s.clone()
	key := CellKey(next.Round, act.I, act.J)
	if next.Wagers[key] == nil {
		next.Wagers[key] = make(map[string]int)
	}
	next.Wagers[key][act.UserID] = act.Wager

	if next.wageringDone(clue) {
		next.ActiveClue.Phase = CluePhaseRevealed
	}

	return next
}

// wageringDone reports whether every expected wager is in: the chooser
// for a daily double, every present player otherwise.
func (s *State) wageringDone(clue models.Clue) bool {
	key := CellKey(s.Round, s.ActiveClue.I, s.ActiveClue.J)
	byUser := s.Wagers[key]

	if clue.IsDailyDouble {
		_, ok := byUser[s.ActiveClue.Chooser]
		return ok
	}

	for _, p := range s.presentPlayers() {
		if _, ok := byUser[p.UserID]; !ok {
			return false
		}
	}
	return len(byUser) > 0
}

func (s *State) applyBuzz(act *Buzz) *State {
	active, clue := s.activeMatch(act.I, act.J)
	if active == nil || clueNeedsWager(clue) {
		return s
	}
	if active.Phase != CluePhaseRevealed && active.Phase != CluePhaseBuzzed {
		return s
	}
	if act.DeltaMs < 0 {
		return s
	}

	p, known := s.Players[act.UserID]
	if !known || p.Left || active.LockedOut[act.UserID] {
		return s
	}
	// First buzz per player stands; later ones from the same player are
	// duplicates.
	if _, buzzed := active.Buzzes[act.UserID]; buzzed {
		return s
	}

	next := s.clone()
	nextActive := next.ActiveClue
	nextActive.Buzzes[act.UserID] = act.DeltaMs
	nextActive.Phase = CluePhaseBuzzed

	// Re-arbitrate on every buzz so clients converge on the same winner
	// regardless of the order the buzz events arrived in.
	winner := buzzWinner(nextActive.Buzzes, nextActive.LockedOut)
	next.Cells[act.I][act.J].BuzzedBy = winner

	return next
}

// buzzWinner picks the fastest eligible buzz, breaking delay ties by
// the smaller user ID so every client agrees.
func buzzWinner(buzzes map[string]int64, lockedOut map[string]bool) string {
	winner := ""
	var best int64
	for userID, delta := range buzzes {
		if lockedOut[userID] {
			continue
		}
		if winner == "" || delta < best || (delta == best && userID < winner) {
			winner = userID
			best = delta
		}
	}
	return winner
}

func (s *State) applyAnswer(act *Answer) *State {
	active, clue := s.activeMatch(act.I, act.J)
	if active == nil {
		return s
	}

	p, known := s.Players[act.UserID]
	if !known || p.Left {
		return s
	}

	if clueNeedsWager(clue) {
		return s.applyWageredAnswer(act, clue)
	}

	// Standard clue: only the player holding the buzz may answer.
	if active.Phase != CluePhaseBuzzed || s.Cells[act.I][act.J].BuzzedBy != act.UserID {
		return s
	}

	next := s.clone()
	next.recordAnswer(act.I, act.J, act.UserID, act.Answer, act.Correct)

	if act.Correct {
		next.Players[act.UserID].Score += clue.Value
		next.BoardControl = act.UserID
		next.resolveActiveClue()
		return next
	}

	next.Players[act.UserID].Score -= clue.Value
	nextActive := next.ActiveClue
	nextActive.LockedOut[act.UserID] = true
	delete(nextActive.Buzzes, act.UserID)

	if next.allPresentLockedOut() {
		// Nobody answered correctly; control stays where it was.
		next.resolveActiveClue()
		return next
	}

	// Others may still buzz, or an earlier losing buzz takes over.
	winner := buzzWinner(nextActive.Buzzes, nextActive.LockedOut)
	next.Cells[act.I][act.J].BuzzedBy = winner
	if winner == "" {
		nextActive.Phase = CluePhaseRevealed
	}

	return next
}

// applyWageredAnswer handles daily-double and final clues, where each
// expected player answers independently for their wager instead of
// buzzing.
func (s *State) applyWageredAnswer(act *Answer, clue models.Clue) *State {
	active := s.ActiveClue
	if active.Phase != CluePhaseRevealed {
		return s
	}
	if clue.IsDailyDouble && act.UserID != active.Chooser {
		return s
	}
	if _, answered := s.Cells[act.I][act.J].Outcomes[act.UserID]; answered {
		return s
	}

	next := s.clone()
	next.recordAnswer(act.I, act.J, act.UserID, act.Answer, act.Correct)

	wager := next.Wagers[CellKey(next.Round, act.I, act.J)][act.UserID]
	if act.Correct {
		next.Players[act.UserID].Score += wager
	} else {
		next.Players[act.UserID].Score -= wager
	}

	if next.allExpectedAnswered(clue) {
		next.resolveActiveClue()
	}

	return next
}

// allExpectedAnswered reports whether every expected answer is in for a
// wagered clue.
func (s *State) allExpectedAnswered(clue models.Clue) bool {
	outcomes := s.Cells[s.ActiveClue.I][s.ActiveClue.J].Outcomes

	if clue.IsDailyDouble {
		_, ok := outcomes[s.ActiveClue.Chooser]
		return ok
	}

	for _, p := range s.presentPlayers() {
		if _, ok := outcomes[p.UserID]; !ok {
			return false
		}
	}
	return len(outcomes) > 0
}

func (s *State) applyNextClue(act *NextClue) *State {
	active, _ := s.activeMatch(act.I, act.J)
	if active == nil || active.Phase == CluePhaseWagering {
		return s
	}

	next := s.clone()
	if next.ActiveClue.Phase != CluePhaseAnswerRevealed {
		// Nobody finished answering; resolve as-is without further scoring.
		next.resolveActiveClue()
	}

	next.ActiveClue = nil
	next.Phase = PhaseInRound

	if next.boardDone() {
		next.Round++
		if next.Round >= len(next.Game.Boards) {
			next.Phase = PhaseGameOver
		} else {
			next.Phase = PhasePreview
		}
	}

	return next
}

func (s *State) applyToggleClock(act *ToggleClock) *State {
	next := s.clone()

	if next.Clock.Running {
		if next.Clock.LastResumedAt != nil {
			elapsed := act.TS.Sub(*next.Clock.LastResumedAt).Milliseconds()
			if elapsed > 0 {
				next.Clock.AccumulatedMs += elapsed
			}
		}
		next.Clock.Running = false
		next.Clock.LastResumedAt = nil
	} else {
		resumed := act.TS
		next.Clock.Running = true
		next.Clock.LastResumedAt = &resumed
	}

	return next
}

func (s *State) applyRestore(act *Restore) *State {
	if act.State == nil {
		return s
	}
	next := act.State.clone()
	// A restored snapshot may have been serialized with empty maps
	// dropped; the reducer assumes they exist.
	if next.Players == nil {
		next.Players = make(map[string]*models.Player)
	}
	if next.Answers == nil {
		next.Answers = make(map[string]map[string]string)
	}
	if next.Wagers == nil {
		next.Wagers = make(map[string]map[string]int)
	}
	return next
}

// activeMatch returns the active clue and its content if (i, j) is the
// clue currently in play, or nil otherwise.
func (s *State) activeMatch(i, j int) (*ActiveClue, models.Clue) {
	if s.Phase != PhaseAnswering || s.ActiveClue == nil {
		return nil, models.Clue{}
	}
	if s.ActiveClue.I != i || s.ActiveClue.J != j {
		return nil, models.Clue{}
	}
	board := s.Board()
	if board == nil {
		return nil, models.Clue{}
	}
	clue, ok := board.Clue(i, j)
	if !ok {
		return nil, models.Clue{}
	}
	return s.ActiveClue, clue
}

// recordAnswer stores the submitted text and correctness outcome for a
// player on the active clue. Must be called on a clone.
func (s *State) recordAnswer(i, j int, userID, answer string, correct bool) {
	key := CellKey(s.Round, i, j)
	if s.Answers[key] == nil {
		s.Answers[key] = make(map[string]string)
	}
	s.Answers[key][userID] = answer

	cell := &s.Cells[i][j]
	if cell.Outcomes == nil {
		cell.Outcomes = make(map[string]bool)
	}
	cell.Outcomes[userID] = correct
}

// resolveActiveClue freezes the active cell as answered and reveals the
// answer. Cell status never regresses from here. Must be called on a
// clone.
func (s *State) resolveActiveClue() {
	cell := &s.Cells[s.ActiveClue.I][s.ActiveClue.J]
	cell.Status = CellAnswered
	cell.BuzzedBy = ""
	s.ActiveClue.Phase = CluePhaseAnswerRevealed
}

// allPresentLockedOut reports whether every present player has answered
// this clue incorrectly.
func (s *State) allPresentLockedOut() bool {
	for _, p := range s.presentPlayers() {
		if !s.ActiveClue.LockedOut[p.UserID] {
			return false
		}
	}
	return true
}

func clueNeedsWager(clue models.Clue) bool {
	return clue.IsDailyDouble || clue.IsWagerable || clue.IsFinal
}
