package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/violetbot/rpgengine/internal/data"
	"github.com/violetbot/rpgengine/internal/db"
	"github.com/violetbot/rpgengine/internal/engine"
	"github.com/violetbot/rpgengine/internal/game/hunt"
	"github.com/violetbot/rpgengine/internal/model"
)

// businessErrs are shown to the player verbatim. Anything else is a
// storage or programming failure: logged, generic reply.
var businessErrs = []error{
	engine.ErrNotRegistered,
	engine.ErrHuntInProgress,
	engine.ErrNoActiveHunt,
	engine.ErrMonsterNotFound,
	engine.ErrUnknownClass,
	engine.ErrClassLocked,
	engine.ErrUnknownGender,
	db.ErrPlayerNotFound,
	db.ErrPromotionBlocked,
	db.ErrHighestRank,
	db.ErrUnknownRank,
}

func renderErr(playerID, verb string, err error) string {
	for _, be := range businessErrs {
		if errors.Is(err, be) {
			return err.Error()
		}
	}
	slog.Error("command failed", "playerID", playerID, "verb", verb, "error", err)
	return "something went wrong, try again later"
}

// dispatch routes one text command. Unknown text counts as chat
// activity and feeds the passive experience tick.
func (s *Server) dispatch(ctx context.Context, playerID, line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "register":
		return s.cmdRegister(ctx, playerID, args)
	case "profile":
		return s.cmdProfile(ctx, playerID)
	case "hunt":
		return s.cmdHunt(ctx, playerID, strings.Join(args, " "))
	case "attack":
		return s.cmdAttack(ctx, playerID)
	case "flee":
		return s.cmdFlee(ctx, playerID)
	case "status":
		return s.cmdStatus(playerID)
	case "promote":
		return s.cmdPromote(ctx, playerID)
	case "class":
		return s.cmdClass(ctx, playerID, args)
	case "fable":
		return s.cmdFable(ctx, playerID, args)
	case "admin":
		return s.cmdAdmin(ctx, playerID, args)
	default:
		return s.cmdTick(ctx, playerID)
	}
}

func (s *Server) cmdRegister(ctx context.Context, playerID string, args []string) string {
	if len(args) < 2 {
		return "usage: register <name> <male|female>"
	}
	gender := args[len(args)-1]
	name := strings.Join(args[:len(args)-1], " ")

	player, err := s.engine.Register(ctx, playerID, name, gender)
	if err != nil {
		return renderErr(playerID, "register", err)
	}
	return fmt.Sprintf("welcome, %s %s! you start as a level %d %s.",
		player.RankDisplay, player.Name, player.Level, player.ClassType)
}

func (s *Server) cmdProfile(ctx context.Context, playerID string) string {
	player, buffs, err := s.engine.Profile(ctx, playerID)
	if err != nil {
		return renderErr(playerID, "profile", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s | %s / %s\n", player.RankDisplay, player.Name, player.ClassType, player.Element)
	fmt.Fprintf(&b, "level %d (cap %d) | exp %d", player.Level, player.RankLevelCap, player.Exp)
	if toNext := data.CumulativeExp(player.Level+1) - player.Exp; player.Level < data.MaxCurveLevel && toNext > 0 {
		fmt.Fprintf(&b, " (%d to next level)", toNext)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "coins %d | gems %d | streak %d | wins %d", player.Coins, player.Gems, player.Streak, player.BattleWins)
	if nextKey, ok := data.NextRankKey(player.RankKey); ok {
		if next, ok := data.BracketByKey(nextKey); ok {
			fmt.Fprintf(&b, "\nnext rank %s: level %d, streak %d, %d coins",
				data.RankTitle(next.Key, player.Gender), next.MinLevel, next.StreakReq, next.CoinCost)
		}
	}
	if len(buffs) > 0 {
		b.WriteString("\nbuffs:")
		for _, t := range []model.BuffType{model.BuffCoinEarn, model.BuffExpEarn, model.BuffGemDrop, model.BuffWinRate} {
			if pct, ok := buffs[t]; ok {
				fmt.Fprintf(&b, " %s+%d%%", t, pct)
			}
		}
	}
	return b.String()
}

func (s *Server) cmdHunt(ctx context.Context, playerID, monsterName string) string {
	session, err := s.engine.StartHunt(ctx, playerID, monsterName)
	if err != nil {
		return renderErr(playerID, "hunt", err)
	}
	return fmt.Sprintf("a wild %s (lv %d, %s, %s) appears! your HP %d, its HP %d. attack or flee?",
		session.Monster.Name, session.Monster.Level, session.Monster.Element, session.Monster.Rarity,
		session.CharacterHP, session.MonsterHP)
}

func (s *Server) cmdAttack(ctx context.Context, playerID string) string {
	outcome, err := s.engine.Attack(ctx, playerID)
	if err != nil {
		return renderErr(playerID, "attack", err)
	}

	var b strings.Builder
	for _, log := range outcome.Logs {
		b.WriteString(renderTurn(log))
		b.WriteByte('\n')
	}

	session := outcome.Session
	switch session.Status {
	case hunt.StatusWon:
		fmt.Fprintf(&b, "you defeated %s in %d turns! +%d exp, +%d coins, +%d gems",
			session.Monster.Name, session.Rewards.Duration,
			session.Rewards.Exp, session.Rewards.Coins, session.Rewards.Gems)
		if session.Rewards.ItemDropped {
			b.WriteString(", and it dropped an item")
		}
		if outcome.Triggered != nil {
			fmt.Fprintf(&b, "\na fable unfolds: %s! use 'fable claim %d' to claim it.",
				outcome.Triggered.Name, outcome.Triggered.ID)
		}
	case hunt.StatusLost:
		fmt.Fprintf(&b, "%s defeated you after %d turns. no rewards this time.",
			session.Monster.Name, session.Rewards.Duration)
	default:
		fmt.Fprintf(&b, "your HP %d | %s HP %d", session.CharacterHP, session.Monster.Name, session.MonsterHP)
	}
	return b.String()
}

func renderTurn(log hunt.TurnLog) string {
	who := "you hit"
	if log.Actor == hunt.ActorMonster {
		who = "it hits you for"
	}
	crit := ""
	if log.IsCrit {
		crit = " (crit!)"
	}
	return fmt.Sprintf("turn %d: %s %d%s [%d -> %d]",
		log.Turn, who, log.Damage.FinalDamage, crit, log.HPBefore, log.HPAfter)
}

func (s *Server) cmdFlee(ctx context.Context, playerID string) string {
	fled, err := s.engine.Flee(ctx, playerID)
	if err != nil {
		return renderErr(playerID, "flee", err)
	}
	if fled {
		return "you got away safely."
	}
	return "you failed to escape! the battle continues."
}

func (s *Server) cmdStatus(playerID string) string {
	session, err := s.engine.HuntStatus(playerID)
	if err != nil {
		return renderErr(playerID, "status", err)
	}
	return fmt.Sprintf("fighting %s (lv %d) | turn %d | your HP %d | its HP %d",
		session.Monster.Name, session.Monster.Level, session.Turn, session.CharacterHP, session.MonsterHP)
}

func (s *Server) cmdPromote(ctx context.Context, playerID string) string {
	player, err := s.engine.Promote(ctx, playerID)
	if err != nil {
		return renderErr(playerID, "promote", err)
	}
	return fmt.Sprintf("congratulations, %s! you are now %s (level cap %d).",
		player.Name, player.RankDisplay, player.RankLevelCap)
}

func (s *Server) cmdClass(ctx context.Context, playerID string, args []string) string {
	if len(args) != 1 {
		return "usage: class <name>"
	}
	player, err := s.engine.ChooseClass(ctx, playerID, args[0])
	if err != nil {
		return renderErr(playerID, "class", err)
	}
	return fmt.Sprintf("you are now a %s.", player.ClassType)
}

func (s *Server) cmdFable(ctx context.Context, playerID string, args []string) string {
	if len(args) == 2 && strings.EqualFold(args[0], "claim") {
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return "usage: fable claim <id>"
		}
		fable, err := s.engine.ClaimFable(ctx, playerID, id)
		if err != nil {
			return renderErr(playerID, "fable", err)
		}
		if fable == nil {
			return "nothing to claim there."
		}
		return fmt.Sprintf("%s\n\n%s\nreward: +%d coins, +%d gems | buff: %s +%d%%",
			fable.Name, fable.Lore, fable.RewardCoins, fable.RewardGems, fable.BuffType, fable.BuffValue)
	}

	views, err := s.engine.Fables(ctx, playerID)
	if err != nil {
		return renderErr(playerID, "fable", err)
	}
	var b strings.Builder
	b.WriteString("fables:")
	for _, v := range views {
		state := "locked"
		switch {
		case v.Claimed:
			state = "claimed"
		case v.Triggered:
			state = "claimable"
		}
		fmt.Fprintf(&b, "\n[%d] %s (%s, %s %d) - %s", v.Fable.ID, v.Fable.Name,
			v.Fable.BuffType, v.Fable.ConditionType, v.Fable.ConditionValue, state)
	}
	return b.String()
}

func (s *Server) cmdTick(ctx context.Context, playerID string) string {
	result, err := s.engine.ExpTick(ctx, playerID)
	if err != nil {
		slog.Error("exp tick failed", "playerID", playerID, "error", err)
		return ""
	}
	if result.Player == nil {
		return ""
	}
	if result.Triggered != nil {
		return fmt.Sprintf("a fable unfolds: %s! use 'fable claim %d' to claim it.",
			result.Triggered.Name, result.Triggered.ID)
	}
	return ""
}

func (s *Server) cmdAdmin(ctx context.Context, playerID string, args []string) string {
	if s.adminSecretHash == "" {
		return "admin commands are disabled"
	}
	if len(args) < 2 {
		return "usage: admin <secret> set <player> k=v... | admin <secret> grant <player> <fable-id>"
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminSecretHash), []byte(args[0])); err != nil {
		slog.Warn("admin auth failed", "playerID", playerID)
		return "admin authentication failed"
	}

	switch strings.ToLower(args[1]) {
	case "set":
		if len(args) < 4 {
			return "usage: admin <secret> set <player> k=v..."
		}
		return s.cmdAdminSet(ctx, playerID, args[2], args[3:])
	case "grant":
		if len(args) != 4 {
			return "usage: admin <secret> grant <player> <fable-id>"
		}
		fableID, err := strconv.Atoi(args[3])
		if err != nil {
			return "fable id must be a number"
		}
		if err := s.engine.GrantFable(ctx, args[2], fableID); err != nil {
			return renderErr(playerID, "admin", err)
		}
		return fmt.Sprintf("granted fable %d to %s", fableID, args[2])
	default:
		return fmt.Sprintf("unknown admin command %q", args[1])
	}
}

func (s *Server) cmdAdminSet(ctx context.Context, playerID, targetID string, pairs []string) string {
	var patch db.AdjustPatch
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Sprintf("bad field %q, expected k=v", pair)
		}
		if err := applyPatchField(&patch, strings.ToLower(key), value); err != nil {
			return err.Error()
		}
	}

	player, err := s.engine.AdminAdjust(ctx, targetID, patch)
	if err != nil {
		return renderErr(playerID, "admin", err)
	}
	return fmt.Sprintf("%s is now level %d %s with %d exp, %d coins, %d gems, streak %d",
		player.Name, player.Level, player.RankDisplay, player.Exp, player.Coins, player.Gems, player.Streak)
}

func applyPatchField(patch *db.AdjustPatch, key, value string) error {
	switch key {
	case "level", "wins", "streak":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number", key)
		}
		switch key {
		case "level":
			patch.Level = &n
		case "wins":
			patch.BattleWins = &n
		case "streak":
			patch.Streak = &n
		}
	case "exp", "coins", "gems":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number", key)
		}
		switch key {
		case "exp":
			patch.Exp = &n
		case "coins":
			patch.Coins = &n
		case "gems":
			patch.Gems = &n
		}
	case "rank":
		patch.RankKey = &value
	case "class":
		patch.ClassType = &value
	case "element":
		patch.Element = &value
	default:
		return fmt.Errorf("unknown field %q", key)
	}
	return nil
}
