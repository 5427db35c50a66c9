package recipe

import "math/rand"

// Ideas is the curated pool of seed phrases the scheduler draws from when
// generating recipes unattended.
var Ideas = []string{
	"bolo de chocolate sem glúten",
	"salada de quinoa com legumes",
	"frango grelhado com ervas",
	"sopa de abóbora cremosa",
	"panqueca integral de banana",
	"lasanha de berinjela",
	"risotto de camarão",
	"hambúrguer de grão-de-bico",
	"torta de limão",
	"curry de batata-doce",
	"peixe assado com legumes",
	"smoothie de frutas vermelhas",
	"pão integral caseiro",
	"mousse de maracujá",
	"strogonoff de cogumelos",
	"pizza integral de rúcula",
	"coxinha de frango assada",
	"salada tropical com manga",
	"brownie de cacau",
	"sopa de lentilha com bacon",
	"wrap de frango com abacate",
	"pudim de chia",
	"escondidinho de batata-doce",
	"bolinho de bacalhau",
	"vitamina de açaí",
	"macarrão ao pesto",
	"brigadeiro gourmet",
	"quiche de espinafre",
	"tapioca recheada",
	"cookies de aveia",
}

// RandomIdea picks one idea uniformly at random.
func RandomIdea() string {
	return Ideas[rand.Intn(len(Ideas))]
}
