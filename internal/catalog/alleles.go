package catalog

import "github.com/pharmaguard-server/internal/domain"

// Reference data for the covered pharmacogenes. Activity scores follow
// the CPIC allele function tables; tier cutoffs are per gene because
// genes differ in how many functional tiers they expose: cytochrome
// genes use a 4-5 tier metabolizer model, transporter and deficiency
// genes use a 3-tier activity model.
func referenceGenes() map[string]*Gene {
	return map[string]*Gene{
		"CYP2D6": {
			Symbol:     "CYP2D6",
			Chromosome: "22",
			Alleles: alleles(map[string]float64{
				"*1": 1.0, "*2": 0.0, "*3": 0.0, "*4": 0.0, "*5": 0.0,
				"*6": 0.0, "*7": 0.0, "*8": 0.0, "*9": 0.5, "*10": 0.5,
				"*11": 0.0, "*12": 1.0, "*14": 0.5, "*15": 0.0, "*17": 0.5,
				"*19": 0.0, "*20": 0.5, "*29": 0.5, "*35": 0.0, "*36": 0.5,
				"*37": 0.0, "*38": 0.0, "*39": 0.5, "*40": 0.0, "*41": 0.5,
				"*42": 0.0, "*43": 0.0, "*44": 0.0, "*45": 0.0, "*46": 0.0,
				"*47": 0.0, "*48": 0.0, "*49": 0.0, "*50": 0.5,
			}),
			Tiers: []ActivityTier{
				{domain.ULTRA_RAPID, 1.75},
				{domain.RAPID, 1.25},
				{domain.NORMAL, 1.05},
				{domain.INTERMEDIATE, 0.25},
				{domain.POOR, 0},
			},
		},
		"CYP2C19": {
			Symbol:     "CYP2C19",
			Chromosome: "10",
			Alleles: alleles(map[string]float64{
				"*1": 1.0, "*2": 0.0, "*3": 0.0, "*4": 0.0, "*5": 0.0,
				"*6": 0.0, "*7": 0.0, "*8": 1.0, "*9": 1.0, "*10": 1.0,
				"*11": 1.0, "*12": 0.0, "*13": 1.0, "*14": 1.0, "*15": 0.0,
				"*16": 1.0, "*17": 1.5, "*18": 1.0, "*19": 1.0, "*20": 1.0,
			}),
			Tiers: []ActivityTier{
				{domain.ULTRA_RAPID, 3.0},
				{domain.RAPID, 2.25},
				{domain.NORMAL, 1.5},
				{domain.INTERMEDIATE, 0.5},
				{domain.POOR, 0},
			},
		},
		"CYP2C9": {
			Symbol:     "CYP2C9",
			Chromosome: "10",
			Alleles: alleles(map[string]float64{
				"*1": 1.0, "*2": 0.8, "*3": 0.05, "*4": 0.5, "*5": 0.2,
				"*6": 0.0, "*7": 0.88, "*8": 0.7, "*9": 1.0, "*10": 1.0,
				"*11": 0.8, "*12": 0.5, "*13": 0.5,
			}),
			Tiers: []ActivityTier{
				{domain.NORMAL, 1.9},
				{domain.INTERMEDIATE, 1.2},
				{domain.POOR, 0.3},
				{domain.NO_FUNCTION, 0},
			},
		},
		"TPMT": {
			Symbol:     "TPMT",
			Chromosome: "6",
			Alleles: alleles(map[string]float64{
				"*1": 1.0, "*2": 0.0, "*3A": 0.0, "*3B": 0.0, "*3C": 0.0,
				"*4": 1.0, "*5": 0.0, "*6": 0.0, "*7": 0.0, "*8": 0.5,
				"*9": 1.0, "*10": 1.0, "*11": 1.0, "*12": 1.0, "*13": 0.0,
			}),
			Tiers: []ActivityTier{
				{domain.NORMAL, 1.6},
				{domain.INTERMEDIATE, 0.5},
				{domain.POOR, 0},
			},
		},
		"SLCO1B1": {
			Symbol:     "SLCO1B1",
			Chromosome: "12",
			Alleles: alleles(map[string]float64{
				"*1A": 1.0, "*1B": 1.0, "*1C": 0.8, "*1D": 0.7, "*1E": 0.9,
				"*2": 0.5, "*3": 0.5, "*4": 0.3, "*5": 0.0, "*15": 0.5,
				"*17": 0.5,
			}),
			Tiers: []ActivityTier{
				{domain.NORMAL, 1.8},
				{domain.INTERMEDIATE, 0.9},
				{domain.POOR, 0},
			},
		},
		"DPYD": {
			Symbol:     "DPYD",
			Chromosome: "1",
			Alleles: alleles(map[string]float64{
				"*1": 1.0, "*1A": 1.0, "*1B": 1.0, "*2A": 0.0, "*2B": 0.0,
				"*3": 0.0, "*4": 0.0, "*5": 0.0, "*6": 0.0, "*7": 0.0,
				"*8": 0.0, "*9A": 0.0, "*9B": 0.0, "*13": 0.0,
			}),
			Tiers: []ActivityTier{
				{domain.NORMAL, 1.8},
				{domain.INTERMEDIATE, 0.9},
				{domain.POOR, 0},
			},
		},
		"CYP3A4": {
			Symbol:     "CYP3A4",
			Chromosome: "7",
			Alleles: alleles(map[string]float64{
				"*1": 1.0, "*1A": 1.0, "*1B": 1.0, "*1D": 1.0, "*2": 0.5,
				"*3": 0.7, "*4": 1.0, "*5": 0.0, "*6": 0.0,
			}),
			Tiers: []ActivityTier{
				{domain.NORMAL, 1.8},
				{domain.INTERMEDIATE, 0.9},
				{domain.POOR, 0},
			},
		},
		"CYP3A5": {
			Symbol:     "CYP3A5",
			Chromosome: "7",
			Alleles: alleles(map[string]float64{
				"*1": 1.0, "*2": 0.0, "*3": 0.0, "*4": 0.0, "*5": 0.0,
				"*6": 0.0, "*7": 0.0, "*9": 0.0, "*10": 0.5,
			}),
			Tiers: []ActivityTier{
				{domain.NORMAL, 1.8},
				{domain.INTERMEDIATE, 0.9},
				{domain.POOR, 0},
			},
		},
	}
}
