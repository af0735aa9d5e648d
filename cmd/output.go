package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"realms-cli/governance"
	"realms-cli/realms"
)

var jsonOutput bool

// consoleNotifier reports transaction progress in the CLI styles.
type consoleNotifier struct{}

func (consoleNotifier) Progress(label string) {
	fmt.Println(promptStyle.Render(fmt.Sprintf("\n%s... Please wait.", label)))
}

func (consoleNotifier) Success(label string, signature solana.Signature) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("\n✅ %s!", label)))
	fmt.Printf("   Transaction Signature: %s\n", signature)
}

// printResult shows what a dry run would have sent.
func printResult(client *realms.Client, result *realms.Result) {
	if result == nil || result.Submitted {
		return
	}
	fmt.Println(titleStyle.Render("🧪 Dry run, transaction not sent"))
	fmt.Println(infoStyle.Render(fmt.Sprintf("   Size: %d of %d bytes", result.Size, realms.MaxTransactionSize)))
	instructions, err := decompile(result.Transaction)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to decode instructions: %v", err)))
		return
	}
	fmt.Println(governance.Describe(client.Program(), instructions))
}

// decompile turns the compiled instructions of tx back into instructions.
func decompile(tx *solana.Transaction) ([]solana.Instruction, error) {
	out := make([]solana.Instruction, 0, len(tx.Message.Instructions))
	for _, compiled := range tx.Message.Instructions {
		programID, err := tx.Message.Program(compiled.ProgramIDIndex)
		if err != nil {
			return nil, err
		}
		metas, err := compiled.ResolveInstructionAccounts(&tx.Message)
		if err != nil {
			return nil, err
		}
		out = append(out, solana.NewInstruction(programID, metas, compiled.Data))
	}
	return out, nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printField(label string, value any) {
	fmt.Printf("%s %v\n", labelStyle.Render(label), value)
}

func printFailure(action string, err error) {
	fmt.Println(warningStyle.Render(fmt.Sprintf("\n❌ %s failed: %v", action, err)))
}

func optionalKey(pk *solana.PublicKey) string {
	if pk == nil {
		return "-"
	}
	return pk.String()
}

func parseKey(what, s string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	return pk, nil
}
