package recipe

import (
	"math/rand"

	"receitapress/internal/models"
)

// fallbackRecipes are served when the text provider reports quota or
// rate-limit exhaustion, so the scheduler keeps publishing instead of
// going silent until the quota resets.
var fallbackRecipes = []Generated{
	{
		Title:       "Bolo de Chocolate Cremoso",
		Description: "Bolo fofinho de chocolate com cobertura cremosa, perfeito para qualquer ocasião especial.",
		Ingredients: []string{
			"2 xícaras de farinha de trigo",
			"1 xícara de açúcar",
			"1/2 xícara de chocolate em pó",
			"3 ovos",
			"1 xícara de leite",
			"1/2 xícara de óleo",
			"1 colher de sopa de fermento",
			"1 pitada de sal",
		},
		Instructions: []string{
			"Pré-aqueça o forno a 180°C e unte uma forma com manteiga e farinha",
			"Em uma tigela, misture os ingredientes secos: farinha, açúcar, chocolate em pó e sal",
			"Em outra tigela, bata os ovos, adicione o leite e o óleo",
			"Misture os ingredientes líquidos aos secos até formar uma massa homogênea",
			"Adicione o fermento e misture delicadamente",
			"Despeje a massa na forma preparada",
			"Asse por 35-40 minutos ou até que um palito saia limpo",
			"Deixe esfriar antes de desenformar",
		},
		Tips: []string{
			"Não abra o forno nos primeiros 20 minutos de cozimento",
			"Para verificar se está pronto, espete um palito no centro",
			"Pode ser servido com chantilly ou sorvete",
			"Guarde em recipiente fechado por até 3 dias",
		},
		CookTime:        45,
		Difficulty:      models.DifficultyEasy,
		Servings:        8,
		MetaTitle:       "Bolo de Chocolate Caseiro - Receita Fácil e Deliciosa",
		MetaDescription: "Aprenda a fazer um bolo de chocolate caseiro fofinho e saboroso. Receita simples com ingredientes básicos.",
		MetaKeywords:    "bolo de chocolate, receita caseira, sobremesa, bolo fácil",
		Hashtags:        []string{"bolo", "chocolate", "sobremesa", "caseiro", "fácil", "doce", "festa", "família", "cremoso", "fofinho"},
		Category:        "Doces",
		Subcategory:     "Bolos",
	},
	{
		Title:       "Risotto de Camarão Cremoso",
		Description: "Risotto italiano autêntico com camarões frescos e temperos especiais, cremoso e saboroso.",
		Ingredients: []string{
			"300g de arroz arbóreo",
			"500g de camarão limpo",
			"1 litro de caldo de peixe",
			"1 cebola média picada",
			"3 dentes de alho",
			"1/2 xícara de vinho branco",
			"50g de manteiga",
			"Queijo parmesão ralado",
			"Salsinha fresca picada",
		},
		Instructions: []string{
			"Tempere os camarões com sal, pimenta e alho",
			"Aqueça o caldo de peixe em uma panela separada",
			"Refogue a cebola na manteiga até dourar",
			"Adicione o arroz e refogue por 2 minutos",
			"Despeje o vinho branco e mexa até evaporar",
			"Adicione o caldo quente, uma concha por vez",
			"Mexa constantemente por cerca de 18 minutos",
			"Nos últimos minutos, adicione os camarões",
			"Finalize com parmesão e salsinha",
		},
		Tips: []string{
			"O segredo é mexer sempre para liberar o amido",
			"O caldo deve estar sempre quente",
			"O ponto ideal é al dente, cremoso mas não empapado",
			"Sirva imediatamente após o preparo",
		},
		CookTime:        35,
		Difficulty:      models.DifficultyMedium,
		Servings:        4,
		MetaTitle:       "Risotto de Camarão - Receita Italiana Autêntica",
		MetaDescription: "Risotto de camarão cremoso e saboroso. Aprenda a técnica italiana para um prato perfeito.",
		MetaKeywords:    "risotto, camarão, culinária italiana, frutos do mar, arroz cremoso",
		Hashtags:        []string{"risotto", "camarão", "italiano", "cremoso", "frutos do mar", "gourmet", "jantar", "especial", "sofisticado", "delicioso"},
		Category:        "Massas",
		Subcategory:     "Risotto",
	},
	{
		Title:       "Salada Caesar Completa",
		Description: "Salada caesar clássica com molho cremoso, croutons crocantes e parmesão fresco.",
		Ingredients: []string{
			"1 pé de alface americana",
			"100g de parmesão em lascas",
			"2 fatias de pão de forma",
			"2 gemas de ovo",
			"3 dentes de alho",
			"6 filés de anchova",
			"Suco de 1 limão",
			"1/4 xícara de azeite",
			"Molho inglês a gosto",
		},
		Instructions: []string{
			"Lave e seque bem as folhas de alface",
			"Corte o pão em cubos e toste no forno com azeite",
			"No liquidificador, bata gemas, alho, anchovas e limão",
			"Adicione o azeite em fio até formar um molho cremoso",
			"Tempere com molho inglês, sal e pimenta",
			"Monte a salada com alface, molho e croutons",
			"Finalize com lascas de parmesão",
			"Sirva imediatamente",
		},
		Tips: []string{
			"Use ovos frescos e de boa procedência",
			"O molho pode ser feito com até 2 dias de antecedência",
			"Mantenha os ingredientes bem gelados",
			"Adicione o molho apenas na hora de servir",
		},
		CookTime:        20,
		Difficulty:      models.DifficultyEasy,
		Servings:        4,
		MetaTitle:       "Salada Caesar Clássica - Receita Tradicional",
		MetaDescription: "Salada caesar autêntica com molho cremoso caseiro. Receita tradicional americana.",
		MetaKeywords:    "salada caesar, molho caesar, salada americana, entrada",
		Hashtags:        []string{"salada", "caesar", "entrada", "americano", "clássico", "molho", "parmesão", "croutons", "fresco", "cremoso"},
		Category:        "Saladas",
		Subcategory:     "Entradas",
	},
}

// fallbackRecipe returns a copy of a random pre-authored recipe, tagged
// SourceFallback. When the original idea is a real phrase (longer than 5
// characters) the title is decorated with it so repeated fallbacks don't
// all collide on the same three titles.
func fallbackRecipe(idea string) *Generated {
	g := fallbackRecipes[rand.Intn(len(fallbackRecipes))]
	g.Source = SourceFallback

	if len(idea) > 5 {
		g.Title = g.Title + " - Inspirado em " + idea
		g.MetaTitle = truncate(g.Title, 55) + "..."
	}
	return &g
}

// truncate shortens s to at most n runes without splitting a character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
