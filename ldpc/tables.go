package ldpc

import "github.com/iottrends-tech/dvb-s2-SDR/modcod"

// Parity bit accumulator addresses for short FECFRAMEs, EN 302 307 annex C.
// Row r lists the addresses for the first information bit of group r; the
// remaining 359 bits of the group use (x + j*q) mod (N-K).
var shortTables = map[modcod.CodeRate][][]int{
	modcod.Rate1_2: {
		{20, 712, 2386, 6354, 4061, 1062, 5045, 5158},
		{21, 2543, 5748, 4822, 2348, 3089, 6328, 5876},
		{22, 926, 5701, 269, 3693, 2438, 3190, 3507},
		{23, 2802, 4520, 3577, 5324, 1091, 4667, 4449},
		{24, 5140, 2003, 1263, 4742, 6497, 1185, 6202},
		{0, 4046, 6934},
		{1, 2855, 66},
		{2, 6694, 212},
		{3, 3439, 1158},
		{4, 3850, 4422},
		{5, 5924, 290},
		{6, 1467, 4049},
		{7, 7820, 2242},
		{8, 4606, 3080},
		{9, 4633, 7877},
		{10, 3884, 6868},
		{11, 8935, 4996},
		{12, 3028, 764},
		{13, 5988, 1057},
		{14, 7411, 3450},
	},
	modcod.Rate2_3: {
		{0, 2084, 1613, 1548, 1286, 1460, 3196, 4297, 2481, 3369, 3451, 4620, 2622},
		{1, 122, 1516, 3448, 2880, 1407, 1847, 3799, 3529, 373, 971, 4358, 3108},
		{2, 259, 3399, 929, 2650, 864, 3996, 3833, 107, 5287, 164, 3125, 2350},
		{3, 342, 3529},
		{4, 4198, 2147},
		{5, 1880, 4836},
		{6, 3864, 4910},
		{7, 243, 1542},
		{8, 3011, 1436},
		{9, 2167, 2512},
		{10, 4606, 1003},
		{11, 2835, 705},
		{12, 3426, 2365},
		{13, 3848, 2474},
		{14, 1360, 1743},
		{0, 163, 2536},
		{1, 2583, 1180},
		{2, 1542, 509},
		{3, 4418, 1005},
		{4, 5212, 5117},
		{5, 2155, 2922},
		{6, 347, 2696},
		{7, 226, 4296},
		{8, 1560, 487},
		{9, 3926, 1640},
		{10, 149, 2928},
		{11, 2364, 563},
		{12, 635, 688},
		{13, 231, 1684},
		{14, 1129, 3894},
	},
	modcod.Rate3_4: {
		{3, 3198, 478, 4207, 1481, 1009, 2616, 1924, 3437, 554, 683, 1801},
		{4, 2681, 2135},
		{5, 3107, 4027},
		{6, 2637, 3373},
		{7, 3830, 3449},
		{8, 4129, 2060},
		{9, 4184, 2742},
		{10, 3946, 1070},
		{11, 2239, 984},
		{0, 1458, 3031},
		{1, 3003, 1328},
		{2, 1137, 1716},
		{3, 132, 3725},
		{4, 1817, 638},
		{5, 1774, 3447},
		{6, 3632, 1257},
		{7, 542, 3694},
		{8, 1015, 1945},
		{9, 1948, 412},
		{10, 995, 2238},
		{11, 4141, 1907},
		{0, 2480, 3079},
		{1, 3021, 1088},
		{2, 713, 1379},
		{3, 997, 3903},
		{4, 2323, 3361},
		{5, 1110, 986},
		{6, 2532, 142},
		{7, 1690, 2405},
		{8, 1298, 1881},
		{9, 615, 174},
		{10, 1648, 3112},
		{11, 1415, 2808},
	},
	modcod.Rate5_6: {
		{3, 2409, 499, 1481, 908, 559, 716, 1270, 333, 2508, 2264, 1702, 2805},
		{4, 2447, 1926},
		{5, 414, 1224},
		{6, 2114, 842},
		{7, 212, 573},
		{0, 2383, 2112},
		{1, 2286, 2348},
		{2, 545, 819},
		{3, 1264, 143},
		{4, 1701, 2258},
		{5, 964, 166},
		{6, 114, 2413},
		{7, 2243, 81},
		{0, 1245, 1581},
		{1, 775, 169},
		{2, 1696, 1104},
		{3, 1914, 2831},
		{4, 532, 1450},
		{5, 91, 974},
		{6, 497, 2228},
		{7, 2326, 1579},
		{0, 2482, 256},
		{1, 1117, 1261},
		{2, 1257, 1658},
		{3, 1478, 1225},
		{4, 2511, 980},
		{5, 2320, 2675},
		{6, 435, 1278},
		{7, 228, 503},
		{0, 1885, 2369},
		{1, 57, 483},
		{2, 838, 1050},
		{3, 1231, 1990},
		{4, 1738, 68},
		{5, 2392, 951},
		{6, 163, 645},
		{7, 2644, 1704},
	},
}

// Parity bit accumulator addresses for normal FECFRAMEs, EN 302 307 annex B.
var normalTables = map[modcod.CodeRate][][]int{
	modcod.Rate1_2: {
		{54, 9318, 14392, 27561, 26909, 10219, 2534, 8597},
		{55, 7263, 4635, 2530, 28130, 3033, 23830, 3651},
		{56, 24731, 23583, 26036, 17299, 5750, 792, 9169},
		{57, 5811, 26154, 18653, 11551, 15447, 13685, 16264},
		{58, 12610, 11347, 28768, 2792, 3174, 29371, 12997},
		{59, 16789, 16018, 21449, 6165, 21202, 15850, 3186},
		{60, 31016, 21449, 17618, 6213, 12166, 8334, 18212},
		{61, 22836, 14213, 11327, 5896, 718, 11727, 9308},
		{62, 2091, 24941, 29966, 23634, 9013, 15587, 5444},
		{63, 22207, 3983, 16904, 28534, 21415, 27524, 25912},
		{64, 25687, 4501, 22193, 14665, 14798, 16158, 5491},
		{65, 4520, 17094, 23397, 4264, 22370, 16941, 21526},
		{66, 10490, 6182, 32370, 9597, 30841, 25954, 2762},
		{67, 22120, 22865, 29870, 15147, 13668, 14955, 19235},
		{68, 6689, 18408, 18346, 9918, 25746, 5443, 20645},
		{69, 29982, 12529, 13858, 4746, 30370, 10023, 24828},
		{70, 1262, 28032, 29888, 13063, 24033, 21951, 7863},
		{71, 6594, 29642, 31451, 14831, 9509, 9335, 31552},
		{72, 1358, 6454, 16633, 20354, 24598, 624, 5265},
		{73, 19529, 295, 18011, 3080, 13364, 8032, 15323},
		{74, 11981, 1510, 7960, 21462, 9129, 11370, 25741},
		{75, 9276, 29656, 4543, 30699, 20646, 21921, 28050},
		{76, 15975, 25634, 5520, 31119, 13715, 21949, 19605},
		{77, 18688, 4608, 31755, 30165, 13103, 10706, 29224},
		{78, 21514, 23117, 12245, 26035, 31656, 25631, 30699},
		{79, 9674, 24966, 31285, 29908, 17042, 24588, 31857},
		{80, 21856, 27777, 29919, 27000, 14897, 11409, 7122},
		{81, 29773, 23310, 263, 4877, 28622, 20545, 22092},
		{82, 15605, 5651, 21864, 3967, 14419, 22757, 15896},
		{83, 30145, 1759, 10139, 29223, 26086, 10556, 5098},
		{84, 18815, 16575, 2936, 24457, 26738, 6030, 505},
		{85, 30326, 22298, 27562, 20131, 26390, 6247, 24791},
		{86, 928, 29246, 21246, 12400, 15311, 32309, 18608},
		{87, 20314, 6025, 26689, 16302, 2296, 3244, 19613},
		{88, 6237, 11943, 22851, 15642, 23857, 15112, 20947},
		{89, 26403, 25168, 19038, 18384, 8882, 12719, 7093},
		{0, 14567, 24965},
		{1, 3908, 100},
		{2, 10279, 240},
		{3, 24102, 764},
		{4, 12383, 4173},
		{5, 13861, 15918},
		{6, 21327, 1046},
		{7, 5288, 14579},
		{8, 28158, 8069},
		{9, 16583, 11098},
		{10, 16681, 28363},
		{11, 13980, 24725},
		{12, 32169, 17989},
		{13, 10907, 2767},
		{14, 21557, 3818},
		{15, 26676, 12422},
		{16, 7676, 8754},
		{17, 14905, 20232},
		{18, 15719, 24646},
		{19, 31942, 8589},
		{20, 19978, 27197},
		{21, 27060, 15071},
		{22, 6071, 26649},
		{23, 10393, 11176},
		{24, 9597, 13370},
		{25, 7081, 17677},
		{26, 1433, 19513},
		{27, 26925, 9014},
		{28, 19202, 8900},
		{29, 18152, 30647},
		{30, 20803, 1737},
		{31, 11804, 25221},
		{32, 31683, 17783},
		{33, 29694, 9345},
		{34, 12280, 26611},
		{35, 6526, 26122},
		{36, 26165, 11241},
		{37, 7666, 26962},
		{38, 16290, 8480},
		{39, 11774, 10120},
		{40, 30051, 30426},
		{41, 1335, 15424},
		{42, 6865, 17742},
		{43, 31779, 12489},
		{44, 32120, 21001},
		{45, 14508, 6996},
		{46, 979, 25024},
		{47, 4554, 21896},
		{48, 7989, 21777},
		{49, 4972, 20661},
		{50, 6612, 2730},
		{51, 12742, 4418},
		{52, 29194, 595},
		{53, 19267, 20113},
	},
	modcod.Rate2_3: {
		{0, 10491, 16043, 506, 12826, 8065, 8226, 2767, 240, 18673, 9279, 10579, 20928},
		{1, 17819, 8313, 6433, 6224, 5120, 5824, 12812, 17187, 9940, 13447, 13825, 18483},
		{2, 17957, 6024, 8681, 18628, 12794, 5915, 14576, 10970, 12064, 20437, 4455, 7151},
		{3, 19777, 6183, 9972, 14536, 8182, 17749, 11341, 5556, 4379, 17434, 15477, 18532},
		{4, 4651, 19689, 1608, 659, 16707, 14335, 6143, 3058, 14618, 17894, 20684, 5306},
		{5, 9778, 2552, 12096, 12369, 15198, 16890, 4851, 3109, 1700, 18725, 1997, 15882},
		{6, 486, 6111, 13743, 11537, 5591, 7433, 15227, 14145, 1483, 3887, 17431, 12430},
		{7, 20647, 14311, 11734, 4180, 8110, 5525, 12141, 15761, 18661, 18441, 10569, 8192},
		{8, 3791, 14759, 15264, 19918, 10132, 9062, 10010, 12786, 10675, 9682, 19246, 5454},
		{9, 19525, 9485, 7777, 19999, 8378, 9209, 3163, 20232, 6690, 16518, 716, 7353},
		{10, 4588, 6709, 20202, 10905, 915, 4317, 11073, 13576, 16433, 368, 3508, 21171},
		{11, 14072, 4033, 19959, 12608, 631, 19494, 14160, 8249, 10223, 21504, 12395, 4322},
		{12, 13800, 14161},
		{13, 2948, 9647},
		{14, 14693, 16027},
		{15, 20506, 11082},
		{16, 1143, 9020},
		{17, 13501, 4014},
		{18, 1548, 2190},
		{19, 12216, 21556},
		{20, 2095, 19897},
		{21, 4189, 7958},
		{22, 15940, 10048},
		{23, 515, 12614},
		{24, 8501, 8450},
		{25, 17595, 16784},
		{26, 5913, 8495},
		{27, 16394, 10423},
		{28, 7409, 6981},
		{29, 6678, 15939},
		{30, 20344, 12987},
		{31, 2510, 14588},
		{32, 17918, 6655},
		{33, 6703, 19451},
		{34, 496, 4217},
		{35, 7290, 5766},
		{36, 10521, 8925},
		{37, 20379, 11905},
		{38, 4090, 5838},
		{39, 19082, 17040},
		{40, 20233, 12352},
		{41, 19365, 19546},
		{42, 6249, 19030},
		{43, 11037, 19193},
		{44, 19760, 11772},
		{45, 19644, 7428},
		{46, 16076, 3521},
		{47, 11779, 21062},
		{48, 13062, 9682},
		{49, 8934, 5217},
		{50, 11087, 3319},
		{51, 18892, 4356},
		{52, 7894, 3898},
		{53, 5963, 4360},
		{54, 7346, 11726},
		{55, 5182, 5609},
		{56, 2412, 17295},
		{57, 9845, 20494},
		{58, 6687, 1864},
		{59, 20564, 5216},
		{0, 18226, 17207},
		{1, 9380, 8266},
		{2, 7073, 3065},
		{3, 18252, 13437},
		{4, 9161, 15642},
		{5, 10714, 10153},
		{6, 11585, 9078},
		{7, 5359, 9418},
		{8, 9024, 9515},
		{9, 1206, 16354},
		{10, 14994, 1102},
		{11, 9375, 20796},
		{12, 15964, 6027},
		{13, 14789, 6452},
		{14, 8002, 18591},
		{15, 14742, 14089},
		{16, 253, 3045},
		{17, 1274, 19286},
		{18, 14777, 2044},
		{19, 13920, 9900},
		{20, 452, 7374},
		{21, 18206, 9921},
		{22, 6131, 5414},
		{23, 10077, 9726},
		{24, 12045, 5479},
		{25, 4322, 7990},
		{26, 15616, 5550},
		{27, 15561, 10661},
		{28, 20718, 7387},
		{29, 2518, 18804},
		{30, 8984, 2600},
		{31, 6516, 17909},
		{32, 11148, 98},
		{33, 20559, 3704},
		{34, 7510, 1569},
		{35, 16000, 11692},
		{36, 9147, 10303},
		{37, 16650, 191},
		{38, 15577, 18685},
		{39, 17167, 20917},
		{40, 4256, 3391},
		{41, 20092, 17219},
		{42, 9218, 5056},
		{43, 18429, 8472},
		{44, 12093, 20753},
		{45, 16345, 12748},
		{46, 16023, 11095},
		{47, 5048, 17595},
		{48, 18995, 4817},
		{49, 16483, 3536},
		{50, 1439, 16148},
		{51, 3661, 3039},
		{52, 19010, 18121},
		{53, 8968, 11793},
		{54, 13427, 18003},
		{55, 5303, 3083},
		{56, 531, 16668},
		{57, 4771, 6722},
		{58, 5695, 7960},
		{59, 3589, 14630},
	},
	modcod.Rate3_4: {
		{0, 6385, 7901, 14611, 13389, 11200, 3252, 5243, 2504, 2722, 821, 7374},
		{1, 11359, 2698, 357, 13824, 12772, 7244, 6752, 15310, 852, 2001, 11417},
		{2, 7862, 7977, 6321, 13612, 12197, 14449, 15137, 13860, 1708, 6399, 13444},
		{3, 1560, 11804, 6975, 13292, 3646, 3812, 8772, 7306, 5795, 14327, 7866},
		{4, 7626, 11407, 14599, 9689, 1628, 2113, 10809, 9283, 1230, 15241, 4870},
		{5, 1610, 5699, 15876, 9446, 12515, 1400, 6303, 5411, 14181, 13925, 7358},
		{6, 4059, 8836, 3405, 7853, 7992, 15336, 5970, 10368, 10278, 9675, 4651},
		{7, 4441, 3963, 9153, 2109, 12683, 7459, 12030, 12221, 629, 15212, 406},
		{8, 6007, 8411, 5771, 3497, 543, 14202, 875, 9186, 6235, 13908, 3563},
		{9, 3232, 6625, 4795, 546, 9781, 2071, 7312, 3399, 7250, 4932, 12652},
		{10, 8820, 10088, 11090, 7069, 6585, 13134, 10158, 7183, 488, 7455, 9238},
		{11, 1903, 10818, 119, 215, 7558, 11046, 10615, 11545, 14784, 7961, 15619},
		{12, 3655, 8736, 4917, 15874, 5129, 2134, 15944, 14768, 7150, 2692, 1469},
		{13, 8316, 3820, 505, 8923, 6757, 806, 7957, 4216, 15589, 13244, 2622},
		{14, 14463, 4852, 15733, 3041, 11193, 12860, 13673, 8152, 6551, 15108, 8758},
		{15, 3149, 11981},
		{16, 13416, 6906},
		{17, 13098, 13352},
		{18, 2009, 14460},
		{19, 7207, 4314},
		{20, 3312, 3945},
		{21, 4418, 6248},
		{22, 2669, 13975},
		{23, 7571, 9023},
		{24, 14172, 2967},
		{25, 7271, 7138},
		{26, 6135, 13670},
		{27, 7490, 14559},
		{28, 8657, 2466},
		{29, 8599, 12834},
		{30, 3470, 3152},
		{31, 13917, 4365},
		{32, 6024, 13730},
		{33, 10973, 14182},
		{34, 2464, 13167},
		{35, 5281, 15049},
		{36, 1103, 1849},
		{37, 2058, 1069},
		{38, 9654, 6095},
		{39, 14311, 7667},
		{40, 15617, 8146},
		{41, 4588, 11218},
		{42, 13660, 6243},
		{43, 8578, 7874},
		{44, 11741, 2686},
		{0, 1022, 1264},
		{1, 12604, 9965},
		{2, 8217, 2707},
		{3, 3156, 11793},
		{4, 354, 1514},
		{5, 6978, 14058},
		{6, 7922, 16079},
		{7, 15087, 12138},
		{8, 5053, 6470},
		{9, 12687, 14932},
		{10, 15458, 1763},
		{11, 8121, 1721},
		{12, 12431, 549},
		{13, 4129, 7091},
		{14, 1426, 8415},
		{15, 9783, 7604},
		{16, 6295, 11329},
		{17, 1409, 12061},
		{18, 8065, 9087},
		{19, 2918, 8438},
		{20, 1293, 14115},
		{21, 3922, 13851},
		{22, 3851, 4000},
		{23, 5865, 1768},
		{24, 2655, 14957},
		{25, 5565, 6332},
		{26, 4303, 12631},
		{27, 11653, 12236},
		{28, 16025, 7632},
		{29, 4655, 14128},
		{30, 9584, 13123},
		{31, 13987, 9597},
		{32, 15409, 12110},
		{33, 8754, 15490},
		{34, 7416, 15325},
		{35, 2909, 15549},
		{36, 2995, 8257},
		{37, 9406, 4791},
		{38, 11111, 4854},
		{39, 2812, 8521},
		{40, 8476, 14717},
		{41, 7820, 15360},
		{42, 1179, 7939},
		{43, 2357, 8678},
		{44, 7703, 6216},
		{0, 3477, 7067},
		{1, 3931, 13845},
		{2, 7675, 12899},
		{3, 1754, 8187},
		{4, 7785, 1400},
		{5, 9213, 5891},
		{6, 2494, 7703},
		{7, 2576, 7902},
		{8, 4821, 15682},
		{9, 10426, 11935},
		{10, 1810, 904},
		{11, 11332, 9264},
		{12, 11312, 3570},
		{13, 14916, 2650},
		{14, 7679, 7842},
		{15, 6089, 13084},
		{16, 3938, 2751},
		{17, 8509, 4648},
		{18, 12204, 8917},
		{19, 5749, 12443},
		{20, 12613, 4431},
		{21, 1344, 4014},
		{22, 8488, 13850},
		{23, 1730, 14896},
		{24, 14942, 7126},
		{25, 14983, 8863},
		{26, 6578, 8564},
		{27, 4947, 396},
		{28, 297, 12805},
		{29, 13878, 6692},
		{30, 11857, 11186},
		{31, 14395, 11493},
		{32, 16145, 12251},
		{33, 13462, 7428},
		{34, 14526, 13119},
		{35, 2535, 11243},
		{36, 6465, 12690},
		{37, 6872, 9334},
		{38, 15371, 14023},
		{39, 8101, 10187},
		{40, 11963, 4848},
		{41, 15125, 6119},
		{42, 8051, 14465},
		{43, 11139, 5167},
		{44, 2883, 14521},
	},
	modcod.Rate5_6: {
		{0, 4362, 416, 8909, 4156, 3216, 3112, 2560, 2912, 6405, 8593, 4969, 6723},
		{1, 2479, 1786, 8978, 3011, 4339, 9313, 6397, 2957, 7288, 5484, 6031, 10217},
		{2, 10175, 9009, 9889, 3091, 4985, 7267, 4092, 8874, 5671, 2777, 2189, 8716},
		{3, 9052, 4795, 3924, 3370, 10058, 1128, 9996, 10165, 9360, 4297, 434, 5138},
		{4, 2379, 7834, 4835, 2327, 9843, 804, 329, 8353, 7167, 3070, 1528, 7311},
		{5, 3435, 7871, 348, 3693, 1876, 6585, 10340, 7144, 5870, 2084, 4052, 2780},
		{6, 3917, 3111, 3476, 1304, 10331, 5939, 5199, 1611, 1991, 699, 8316, 9960},
		{7, 6883, 3237, 1717, 10752, 7891, 9764, 4745, 3888, 10009, 4176, 4614, 1567},
		{8, 10587, 2195, 1689, 2968, 5420, 2580, 2883, 6496, 111, 6023, 1024, 4449},
		{9, 3786, 8593, 2074, 3321, 5057, 1450, 3840, 5444, 6572, 3094, 9892, 1512},
		{10, 8548, 1848, 10372, 4585, 7313, 6536, 6379, 1766, 9462, 2456, 5606, 9975},
		{11, 8204, 10593, 7935, 3636, 3882, 394, 5968, 8561, 2395, 7289, 9267, 9978},
		{12, 7795, 74, 1633, 9542, 6867, 7352, 6417, 7568, 10623, 725, 2531, 9115},
		{13, 7151, 2482, 4260, 5003, 10105, 7419, 9203, 6691, 8798, 2092, 8263, 3755},
		{14, 3600, 570, 4527, 200, 9718, 6771, 1995, 8902, 5446, 768, 1103, 6520},
		{15, 6304, 7621},
		{16, 6498, 9209},
		{17, 7293, 6786},
		{18, 5950, 1708},
		{19, 8521, 1793},
		{20, 6174, 7854},
		{21, 9773, 1190},
		{22, 9517, 10268},
		{23, 2181, 9349},
		{24, 1949, 5560},
		{25, 1556, 555},
		{26, 8600, 3827},
		{27, 5072, 1057},
		{28, 7928, 3542},
		{29, 3226, 3762},
		{0, 7045, 2420},
		{1, 9645, 2641},
		{2, 2774, 2452},
		{3, 5331, 2031},
		{4, 9400, 7503},
		{5, 1850, 2338},
		{6, 10456, 9774},
		{7, 1692, 9276},
		{8, 10037, 4038},
		{9, 3964, 338},
		{10, 2640, 5087},
		{11, 858, 3473},
		{12, 5582, 5683},
		{13, 9523, 916},
		{14, 4107, 1559},
		{15, 4506, 3491},
		{16, 8191, 4182},
		{17, 10192, 6157},
		{18, 5668, 3305},
		{19, 3449, 1540},
		{20, 4766, 2697},
		{21, 4069, 6675},
		{22, 1117, 1016},
		{23, 5619, 3085},
		{24, 8483, 8400},
		{25, 8255, 394},
		{26, 6338, 5042},
		{27, 6174, 5119},
		{28, 7203, 1989},
		{29, 1781, 5174},
		{0, 1464, 3559},
		{1, 3376, 4214},
		{2, 7238, 67},
		{3, 10595, 8831},
		{4, 1221, 6513},
		{5, 5300, 4652},
		{6, 1429, 9749},
		{7, 7878, 5131},
		{8, 4435, 10284},
		{9, 6331, 5507},
		{10, 6662, 4941},
		{11, 9614, 10238},
		{12, 8400, 8025},
		{13, 9156, 5630},
		{14, 7067, 8878},
		{15, 9027, 3415},
		{16, 1690, 3866},
		{17, 2854, 8469},
		{18, 6206, 630},
		{19, 363, 5453},
		{20, 4125, 7008},
		{21, 1612, 6702},
		{22, 9069, 9226},
		{23, 5767, 4060},
		{24, 3743, 9237},
		{25, 7018, 5572},
		{26, 8892, 4536},
		{27, 853, 6064},
		{28, 8069, 5893},
		{29, 2051, 2885},
		{0, 10691, 3153},
		{1, 3602, 4055},
		{2, 328, 1717},
		{3, 2219, 9299},
		{4, 1939, 7898},
		{5, 617, 206},
		{6, 8544, 1374},
		{7, 10676, 3240},
		{8, 6672, 9489},
		{9, 3170, 7457},
		{10, 7868, 5731},
		{11, 6121, 10732},
		{12, 4843, 9132},
		{13, 580, 9591},
		{14, 6267, 9290},
		{15, 3009, 2268},
		{16, 195, 2419},
		{17, 8016, 1557},
		{18, 1516, 9195},
		{19, 8062, 9064},
		{20, 2095, 8968},
		{21, 753, 7326},
		{22, 6291, 3833},
		{23, 2614, 7844},
		{24, 2303, 646},
		{25, 2075, 611},
		{26, 4687, 362},
		{27, 8684, 9940},
		{28, 4830, 2065},
		{29, 7038, 1363},
		{0, 1769, 7837},
		{1, 3801, 1689},
		{2, 10070, 2359},
		{3, 3667, 9918},
		{4, 1914, 6920},
		{5, 4244, 5669},
		{6, 10245, 7821},
		{7, 7648, 3944},
		{8, 3310, 5488},
		{9, 6346, 9666},
		{10, 7088, 6122},
		{11, 1291, 7827},
		{12, 10592, 8945},
		{13, 3609, 7120},
		{14, 9168, 9112},
		{15, 6203, 8052},
		{16, 3330, 2895},
		{17, 4264, 10563},
		{18, 10556, 6496},
		{19, 8807, 7645},
		{20, 1999, 4530},
		{21, 9202, 6818},
		{22, 3403, 1734},
		{23, 2106, 9023},
		{24, 6881, 3883},
		{25, 3895, 2171},
		{26, 4062, 6424},
		{27, 3755, 9536},
		{28, 4683, 2131},
		{29, 7347, 8027},
	},
}
