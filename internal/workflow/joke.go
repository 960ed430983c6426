package workflow

import (
	"context"
)

// Joke sends a random joke as intro, setup and punchline with pauses between them.
func (s *Service) Joke(ctx context.Context, out Outbox) error {
	if s.jokes == nil {
		s.send(ctx, out, Reply{Text: msgJokeUnavailable})
		return nil
	}
	j, err := s.jokes.Random(ctx)
	if err != nil {
		s.send(ctx, out, Reply{Text: msgJokeUnavailable})
		return err
	}
	s.send(ctx, out, Reply{Text: msgJokeIntro})
	if err := pause(ctx, s.delays.JokeSetup); err != nil {
		return err
	}
	s.send(ctx, out, Reply{Text: j.Setup})
	if err := pause(ctx, s.delays.JokePunchline); err != nil {
		return err
	}
	s.send(ctx, out, Reply{Text: j.Punchline})
	return nil
}
