package accountsservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	accountsdb "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/infrastructure/repositories"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

func toLinkedAccount(link accountsdb.SummonerLink, primary bool) LinkedAccount {
	return LinkedAccount{
		GameName: link.GameName,
		TagLine:  link.TagLine,
		Region:   link.Region,
		PUUID:    link.PUUID,
		Primary:  primary,
	}
}

// ObserveUser upserts the identity registry from gateway traffic.
func (s *AccountService) ObserveUser(ctx context.Context, userID sharedtypes.DiscordID, username string) error {
	if userID == "" {
		return nil
	}
	result, err := withTelemetry(s, ctx, "ObserveUser", string(userID), func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		user := &accountsdb.User{
			UserID:   userID,
			Username: username,
		}
		if err := s.repo.UpsertUser(ctx, nil, user); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

// LinkAccount verifies a Riot ID upstream and stores the link. The user row
// and the link are written in one transaction; verification happens outside
// it because it is a network call.
func (s *AccountService) LinkAccount(ctx context.Context, userID sharedtypes.DiscordID, username, gameName, tagLine, region string) (*LinkedAccount, error) {
	identifier := fmt.Sprintf("%s#%s", gameName, tagLine)
	result, err := withTelemetry(s, ctx, "LinkAccount", identifier, func(ctx context.Context) (results.OperationResult[*LinkedAccount, error], error) {
		if s.verifier == nil {
			return results.OperationResult[*LinkedAccount, error]{}, errors.New("no riot verifier configured")
		}
		verified, err := s.verifier.VerifyRiotID(ctx, gameName, tagLine)
		if err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return results.FailureResult[*LinkedAccount, error](ErrAccountNotFound), nil
			}
			return results.OperationResult[*LinkedAccount, error]{}, err
		}

		if region == "" {
			region = s.defaultRegion
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*LinkedAccount, error], error) {
			user := &accountsdb.User{
				UserID:   userID,
				Username: username,
			}
			if err := s.repo.UpsertUser(ctx, db, user); err != nil {
				return results.OperationResult[*LinkedAccount, error]{}, err
			}

			existing, err := s.repo.ListLinks(ctx, db, userID)
			if err != nil {
				return results.OperationResult[*LinkedAccount, error]{}, err
			}

			link := &accountsdb.SummonerLink{
				UserID:   userID,
				PUUID:    verified.PUUID,
				GameName: verified.GameName,
				TagLine:  verified.TagLine,
				Region:   region,
			}
			if err := s.repo.CreateLink(ctx, db, link); err != nil {
				if errors.Is(err, accountsdb.ErrDuplicateLink) {
					return results.FailureResult[*LinkedAccount, error](ErrAlreadyLinked), nil
				}
				return results.OperationResult[*LinkedAccount, error]{}, err
			}

			if s.metrics != nil {
				s.metrics.RecordLinkChange(ctx, "link")
			}
			return results.SuccessResult[*LinkedAccount, error](&LinkedAccount{
				GameName: verified.GameName,
				TagLine:  verified.TagLine,
				Region:   region,
				PUUID:    verified.PUUID,
				Primary:  len(existing) == 0,
			}), nil
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// UnlinkAccount removes one linked Riot account.
func (s *AccountService) UnlinkAccount(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) error {
	identifier := fmt.Sprintf("%s#%s", gameName, tagLine)
	result, err := withTelemetry(s, ctx, "UnlinkAccount", identifier, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		if err := s.repo.DeleteLink(ctx, nil, userID, gameName, tagLine); err != nil {
			if errors.Is(err, accountsdb.ErrNotFound) {
				return results.FailureResult[struct{}, error](ErrNotLinked), nil
			}
			return results.OperationResult[struct{}, error]{}, err
		}
		if s.metrics != nil {
			s.metrics.RecordLinkChange(ctx, "unlink")
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

// ListLinks returns the user's linked accounts, primary first.
func (s *AccountService) ListLinks(ctx context.Context, userID sharedtypes.DiscordID) ([]LinkedAccount, error) {
	result, err := withTelemetry(s, ctx, "ListLinks", string(userID), func(ctx context.Context) (results.OperationResult[[]LinkedAccount, error], error) {
		links, err := s.repo.ListLinks(ctx, nil, userID)
		if err != nil {
			return results.OperationResult[[]LinkedAccount, error]{}, err
		}
		out := make([]LinkedAccount, len(links))
		for i, link := range links {
			out[i] = toLinkedAccount(link, i == 0)
		}
		return results.SuccessResult[[]LinkedAccount, error](out), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// PrimaryLink returns the user's oldest link.
func (s *AccountService) PrimaryLink(ctx context.Context, userID sharedtypes.DiscordID) (*LinkedAccount, error) {
	result, err := withTelemetry(s, ctx, "PrimaryLink", string(userID), func(ctx context.Context) (results.OperationResult[*LinkedAccount, error], error) {
		link, err := s.repo.FirstLink(ctx, nil, userID)
		if err != nil {
			if errors.Is(err, accountsdb.ErrNotFound) {
				return results.FailureResult[*LinkedAccount, error](ErrNotLinked), nil
			}
			return results.OperationResult[*LinkedAccount, error]{}, err
		}
		account := toLinkedAccount(*link, true)
		return results.SuccessResult[*LinkedAccount, error](&account), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}
