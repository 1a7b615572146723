// Package main provides the pokegen command line: one subcommand per game action,
// run against the configured save.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokegen/internal/config"
	"github.com/cory-johannsen/pokegen/internal/game/creature"
	"github.com/cory-johannsen/pokegen/internal/game/inventory"
	"github.com/cory-johannsen/pokegen/internal/game/personality"
	"github.com/cory-johannsen/pokegen/internal/game/session"
	"github.com/cory-johannsen/pokegen/internal/observability"
	"github.com/cory-johannsen/pokegen/internal/pokeapi"
	"github.com/cory-johannsen/pokegen/internal/storage/backend"
	"github.com/cory-johannsen/pokegen/internal/textgen"
	"github.com/cory-johannsen/pokegen/internal/textgen/anthropic"
)

const usage = `usage: pokegen [-config path] <command> [args]

commands:
  status                         credits, collection size and rank
  pull <count>                   summon count creatures
  list [-rarity R] [-sort key]   show the collection
  show <id>                      show one creature and its siblings
  release <id>...                release creatures for credits
  fuse <id> <id> <id>            fuse three creatures of one rarity
  chat <id> <message>            talk to a creature
  bonus                          claim free credits
`

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger, flag.Args(), os.Stdout); err != nil {
		logger.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, args []string, out io.Writer) error {
	slots, closeSlots, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSlots()

	var gen textgen.Generator = textgen.Unavailable{}
	if cfg.Generator.APIKey != "" {
		g, err := anthropic.New(cfg.Generator, logger.Named("textgen"))
		if err != nil {
			return err
		}
		gen = g
	}

	sess, err := session.Open(ctx, cfg, session.Deps{
		Slots:     slots,
		Provider:  pokeapi.NewCache(pokeapi.NewClient(cfg.Provider, nil)),
		Generator: gen,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	cmdErr := dispatch(ctx, sess, args, out)
	if err := sess.Close(); err != nil {
		return errors.Join(cmdErr, fmt.Errorf("saving: %w", err))
	}
	return cmdErr
}

func dispatch(ctx context.Context, sess *session.Session, args []string, out io.Writer) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "status":
		return status(sess, out)
	case "pull":
		if len(rest) != 1 {
			return errors.New("pull takes exactly one count")
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("pull count: %w", err)
		}
		got, err := sess.Gacha.Pull(ctx, n)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "pulled %d for %d credits:\n", len(got), sess.Gacha.Cost(n))
		return table(out, got)
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		rarity := fs.String("rarity", inventory.FilterAll, "ALL, COMMON, RARE, EPIC or LEGENDARY")
		sortKey := fs.String("sort", string(inventory.SortNewest), "sort key")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		key, err := inventory.ParseSortKey(*sortKey)
		if err != nil {
			return err
		}
		if *rarity != inventory.FilterAll {
			if _, err := creature.ParseRarity(*rarity); err != nil {
				return err
			}
		}
		return table(out, sess.View(*rarity, key))
	case "show":
		if len(rest) != 1 {
			return errors.New("show takes exactly one id")
		}
		return show(ctx, sess, rest[0], out)
	case "release":
		if len(rest) == 0 {
			return errors.New("release needs at least one id")
		}
		n, value := sess.Store.ReleaseMany(rest)
		fmt.Fprintf(out, "released %d for %d credits (balance %d)\n", n, value, sess.Store.Credits())
		return nil
	case "fuse":
		res, err := sess.Fusion.Fuse(ctx, rest)
		if err != nil {
			return err
		}
		note := ""
		if res.Boosted {
			note = " (boosted)"
		}
		fmt.Fprintf(out, "fusion produced%s after %d draws:\n", note, res.Attempts)
		return table(out, []creature.Creature{res.Creature})
	case "chat":
		if len(rest) < 2 {
			return errors.New("chat takes an id and a message")
		}
		if _, err := sess.Personality.Ensure(ctx, rest[0]); err != nil {
			return err
		}
		reply, err := sess.Personality.Chat(ctx, personality.NewConversation(rest[0]), strings.Join(rest[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply)
		return nil
	case "bonus":
		credits, err := sess.ClaimBonus()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "balance %d\n", credits)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func status(sess *session.Session, out io.Writer) error {
	st := sess.Standing()
	next := "max"
	if !st.Rank.IsTop() {
		next = fmt.Sprintf("%.0f", st.Rank.NextScore)
	}
	_, err := fmt.Fprintf(out, "credits %d, %d creatures, score %.0f, rank %s (%.0f%% to %s)\n",
		sess.Store.Credits(), sess.Store.Len(), st.Score, st.Rank.Name, 100*st.Progress, next)
	return err
}

func show(ctx context.Context, sess *session.Session, id string, out io.Writer) error {
	c, ok := sess.Store.Get(id)
	if !ok {
		return fmt.Errorf("%q: %w", id, inventory.ErrNotFound)
	}
	text, err := sess.Personality.Ensure(ctx, id)
	if err != nil {
		return err
	}
	if err := table(out, []creature.Creature{c}); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", text)
	if sib := inventory.Siblings(sess.Store.Collection(), c.SpeciesID); len(sib) > 1 {
		fmt.Fprintf(out, "\nyou own %d of this species\n", len(sib))
	}
	return nil
}

func table(out io.Writer, list []creature.Creature) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\t#\tNAME\tTYPES\tRARITY\tHP/ATK/DEF/SPD\tVALUE")
	for _, c := range list {
		name := c.Name
		if c.Shiny {
			name += " *"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%d/%d/%d/%d\t%d\n",
			c.ID, c.SpeciesID, name, strings.Join(c.Types, "/"), c.Rarity.DisplayName(),
			c.Stats.HP, c.Stats.Attack, c.Stats.Defense, c.Stats.Speed, creature.ResellValue(c))
	}
	return w.Flush()
}
