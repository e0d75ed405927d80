package permit

import (
	"context"
	"fmt"
	"strings"

	"github.com/vialabs/payorder/clients"
	"github.com/vialabs/payorder/types"
)

// SignPermit asks the wallet to sign assembled permit data and returns the
// 65-byte signature. The wallet must be the permit owner; signing someone
// else's permit is rejected before the wallet is touched.
func SignPermit(ctx context.Context, wallet clients.Wallet, data *types.PermitData) ([]byte, error) {
	if wallet == nil {
		return nil, types.ValidationError("wallet is nil")
	}
	if data == nil {
		return nil, types.ValidationError("permit data is nil")
	}
	if !strings.EqualFold(wallet.Address(), data.Message.Owner) {
		return nil, types.ValidationError(
			"wallet %s is not the permit owner %s",
			wallet.Address(), data.Message.Owner,
		)
	}

	signature, err := wallet.SignTypedData(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("sign permit: %w", err)
	}
	if len(signature) != 65 {
		return nil, types.ValidationError("permit signature must be 65 bytes, got %d", len(signature))
	}
	return signature, nil
}
