package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	"github.com/scatkit/jitobundle/bundle"
	"github.com/scatkit/jitobundle/config"
	"github.com/scatkit/jitobundle/confirm"
	"github.com/scatkit/jitobundle/jitorpc"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), logger); err != nil {
		logger.Error("send bundle failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger) error {
	// Fails before any client is created.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	payer := cfg.Payer
	logger.Info("loaded fee payer", zap.Stringer("pubkey", payer.PubKey))

	solCl := rpc.New(cfg.RPCURL)
	defer solCl.Close()
	proxy, err := jitorpc.WithProxy(cfg.JitoProxy)
	if err != nil {
		return err
	}
	jitoCl := jitorpc.NewJito(cfg.JitoURL, cfg.JitoUUID, proxy)

	wsCl, err := ws.Connect(ctx, cfg.WSURL)
	if err != nil {
		return fmt.Errorf("websocket connect: %w", err)
	}
	defer wsCl.Close()

	balance, err := solCl.GetBalance(ctx, payer.PubKey, cfg.Commitment)
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}
	logger.Info("fee payer balance", zap.Uint64("lamports", balance.Value))

	tipAccount, err := jitoCl.GetRandomTipAccount(ctx)
	if err != nil {
		return fmt.Errorf("get tip account: %w", err)
	}
	logger.Info("selected tip account", zap.Stringer("address", tipAccount.Address))

	expiry, err := bundle.FetchExpiry(ctx, solCl, cfg.Commitment)
	if err != nil {
		return err
	}

	batch, err := bundle.Build(payer, expiry, tipAccount.Address, cfg.TipLamports, cfg.BundleSize)
	if err != nil {
		return err
	}
	for i, tx := range batch.Transactions {
		logger.Debug("built transaction", zap.Int("index", i), zap.Stringer("signature", tx.Signatures[0]))
	}

	watcher := confirm.NewWatcher(
		&confirm.WSSignatureWaiter{Client: wsCl},
		&confirm.BlockHeightWaiter{
			Heights:    solCl,
			Heartbeat:  &confirm.SlotHeartbeat{Client: wsCl},
			Commitment: cfg.Commitment,
		},
		cfg.Commitment,
		logger,
	)
	pending := watcher.Start(ctx, batch.FirstSignature(), expiry.LastValidBlockHeight)

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	bundleID, err := jitoCl.SendBundle(sendCtx, batch.Transactions)
	if err != nil {
		pending.Cancel()
		pending.Wait()
		return fmt.Errorf("send bundle: %w", err)
	}
	logger.Info("bundle accepted by block engine", zap.String("bundle_id", bundleID))

	res := pending.Wait()
	if res.Outcome == confirm.Confirmed {
		fmt.Println(explorerURL(res.Signature))
	}

	reportBundleStatus(ctx, logger, jitoCl, bundleID)
	return nil
}

func reportBundleStatus(ctx context.Context, logger *zap.Logger, jitoCl *jitorpc.JitoClient, bundleID string) {
	statusCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	statuses, err := jitoCl.GetInflightBundleStatuses(statusCtx, []string{bundleID})
	if err != nil {
		logger.Warn("could not fetch bundle status", zap.String("bundle_id", bundleID), zap.Error(err))
		return
	}
	status, ok := statuses.Find(bundleID)
	if !ok {
		logger.Info("bundle status not reported", zap.String("bundle_id", bundleID))
		return
	}
	if err := status.Err(); err != nil {
		logger.Warn("bundle rejected", zap.String("bundle_id", bundleID), zap.Error(err))
		return
	}
	logger.Info("bundle status", zap.String("bundle_id", bundleID), zap.String("status", status.Status), zap.Uint64("landed_slot", status.LandedSlot))
}

func explorerURL(sig solana.Signature) string {
	return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=testnet", sig)
}
