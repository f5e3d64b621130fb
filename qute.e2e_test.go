package qute_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/go-qute"
)

type line struct {
	Name string
	Qty  int
}

type customer struct {
	Name string
}

type invoice struct {
	Number   int
	Lines    []line
	Customer customer
	Paid     bool
}

const invoiceTemplate = `Invoice {invoice.number}
{#for line in invoice.lines}{iter:count}. {line.name} x{line.qty}{#if line.qty gt 1} (bulk){/if}
{/for}{#with invoice.customer as c}Bill to: {c.name}{/with}
{#if invoice.paid}PAID{:else}DUE{/if}
{#footer note='thanks' /}`

func TestE2E_InvoiceFromStorage(t *testing.T) {
	ctx := context.Background()
	storage := qute.NewMemoryStorage()
	require.NoError(t, storage.Save(ctx, &qute.StoredTemplate{ID: "invoice", Source: invoiceTemplate}))
	require.NoError(t, storage.Save(ctx, &qute.StoredTemplate{ID: "tags/footer", Source: "-- {note} --"}))

	cached := qute.NewCachedStorage(storage, qute.DefaultCacheConfig(), nil)
	engine, err := qute.New(
		qute.WithLocator(qute.NewStorageLocator(cached)),
		qute.WithUserTag("footer", "tags/footer"),
	)
	require.NoError(t, err)

	data := map[string]any{"invoice": invoice{
		Number:   42,
		Lines:    []line{{"Pen", 1}, {"Ink", 3}},
		Customer: customer{Name: "Lu"},
	}}

	out, err := engine.Render(ctx, "invoice", data)
	require.NoError(t, err)
	assert.Equal(t, "Invoice 42\n1. Pen x1\n2. Ink x3 (bulk)\nBill to: Lu\nDUE\n-- thanks --", out)

	tmpl, err := engine.GetTemplate(ctx, "invoice")
	require.NoError(t, err)
	var sb strings.Builder
	require.NoError(t, tmpl.RenderTo(ctx, &sb, map[string]any{"invoice": invoice{Number: 7, Paid: true}}))
	assert.Equal(t, "Invoice 7\nBill to: \nPAID\n-- thanks --", sb.String())

	assert.ElementsMatch(t, []string{"invoice", "tags/footer"}, engine.TemplateIDs())
}

func TestE2E_CustomResolvers(t *testing.T) {
	ctx := context.Background()
	money := qute.Match[int]().
		AndName("cents").
		Resolve(func(_ context.Context, ec *qute.EvalContext) (any, error) {
			return ec.Base.(int) * 100, nil
		}).
		Build()
	config := qute.NewNamespaceResolver("cfg", func(_ context.Context, ec *qute.EvalContext) (any, error) {
		if ec.Name == "currency" {
			return "EUR", nil
		}
		return qute.NotFound, nil
	})

	engine := qute.MustNew(qute.WithValueResolver(money), qute.WithNamespaceResolver(config))
	out, err := engine.RenderString(ctx, "{price.cents} {cfg:currency}{cfg:missing}", map[string]any{"price": 3})
	require.NoError(t, err)
	assert.Equal(t, "300 EUR", out)
}
